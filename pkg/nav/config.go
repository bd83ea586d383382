package nav

import (
	"errors"
	"fmt"
	"math"
)

// Config holds all tunable parameters for wandering and stuck recovery.
// Times are in seconds, distances in world units.
type Config struct {
	// Wandering
	WanderRadius   float64 `yaml:"wander_radius"`   // Radius for random destinations
	MinWait        float64 `yaml:"min_wait"`        // Shortest idle between destinations
	MaxWait        float64 `yaml:"max_wait"`        // Longest idle between destinations
	ArriveDistance float64 `yaml:"arrive_distance"` // Remaining distance treated as arrived
	SampleRetries  int     `yaml:"sample_retries"`  // Surface sampling attempts per destination

	// Animation
	WalkSpeedThreshold float64 `yaml:"walk_speed_threshold"` // Speed above which the dog walks

	// Stuck detection
	StuckThreshold       float64 `yaml:"stuck_threshold"`        // Low-motion time before stuck
	MinVelocityThreshold float64 `yaml:"min_velocity_threshold"` // Speed and displacement floor
	SampleInterval       float64 `yaml:"sample_interval"`        // Displacement sampling cadence

	// Escape
	EscapeRadius      float64 `yaml:"escape_radius"`       // Distance of escape candidates
	MaxEscapeAttempts int     `yaml:"max_escape_attempts"` // Candidates tried per stuck episode
}

// DefaultConfig returns the tuning used by the dog in the app.
func DefaultConfig() Config {
	return Config{
		WanderRadius:   6,
		MinWait:        2,
		MaxWait:        5,
		ArriveDistance: 0.5,
		SampleRetries:  30,

		WalkSpeedThreshold: 0.05,

		StuckThreshold:       2,
		MinVelocityThreshold: 0.1,
		SampleInterval:       0.1,

		EscapeRadius:      3,
		MaxEscapeAttempts: 5,
	}
}

// RestlessConfig returns a configuration for a dog that rarely sits still.
func RestlessConfig() Config {
	cfg := DefaultConfig()
	cfg.WanderRadius = 10
	cfg.MinWait = 0.5
	cfg.MaxWait = 1.5
	return cfg
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, v := range map[string]float64{
		"wander_radius":          c.WanderRadius,
		"min_wait":               c.MinWait,
		"max_wait":               c.MaxWait,
		"arrive_distance":        c.ArriveDistance,
		"walk_speed_threshold":   c.WalkSpeedThreshold,
		"stuck_threshold":        c.StuckThreshold,
		"min_velocity_threshold": c.MinVelocityThreshold,
		"sample_interval":        c.SampleInterval,
		"escape_radius":          c.EscapeRadius,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("nav: %s must be a finite number", name)
		}
	}
	if c.WanderRadius <= 0 {
		return errors.New("nav: wander radius must be positive")
	}
	if c.MinWait < 0 || c.MaxWait < c.MinWait {
		return errors.New("nav: wait range must satisfy 0 <= min <= max")
	}
	if c.ArriveDistance < 0 {
		return errors.New("nav: arrive distance must not be negative")
	}
	if c.SampleRetries < 1 {
		return errors.New("nav: sample retries must be at least 1")
	}
	if c.WalkSpeedThreshold < 0 {
		return errors.New("nav: walk speed threshold must not be negative")
	}
	if c.StuckThreshold <= 0 {
		return errors.New("nav: stuck threshold must be positive")
	}
	if c.MinVelocityThreshold <= 0 {
		return errors.New("nav: min velocity threshold must be positive")
	}
	if c.SampleInterval <= 0 {
		return errors.New("nav: sample interval must be positive")
	}
	if c.EscapeRadius <= 0 {
		return errors.New("nav: escape radius must be positive")
	}
	if c.MaxEscapeAttempts < 0 {
		return errors.New("nav: max escape attempts must not be negative")
	}
	return nil
}

// WithWait returns a copy with the wait range set.
func (c Config) WithWait(min, max float64) Config {
	c.MinWait = min
	c.MaxWait = max
	return c
}

// WithStuck returns a copy with stuck detection thresholds set.
func (c Config) WithStuck(threshold, minVelocity float64) Config {
	c.StuckThreshold = threshold
	c.MinVelocityThreshold = minVelocity
	return c
}

// WithEscape returns a copy with escape settings.
func (c Config) WithEscape(radius float64, attempts int) Config {
	c.EscapeRadius = radius
	c.MaxEscapeAttempts = attempts
	return c
}
