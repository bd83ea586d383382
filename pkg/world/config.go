package world

import (
	"errors"
	"fmt"

	"github.com/togedaeng/go-togedaeng/pkg/nav"
	"github.com/togedaeng/go-togedaeng/pkg/navmesh"
	"github.com/togedaeng/go-togedaeng/pkg/voice"
)

// Config holds world simulation parameters.
type Config struct {
	TickRate      float64 `yaml:"tick_rate"`      // Ticks per second
	SnapshotEvery int     `yaml:"snapshot_every"` // Publish a snapshot every N ticks
	MaxDogs       int     `yaml:"max_dogs"`
	Seed          int64   `yaml:"seed"`      // Yard layout and dog randomness
	DogSpeed      float64 `yaml:"dog_speed"` // Units per second
	EventHistory  int     `yaml:"event_history"`

	Yard  navmesh.YardConfig `yaml:"yard"`
	Nav   nav.Config         `yaml:"nav"`
	Voice voice.Config       `yaml:"voice"`
}

// DefaultConfig returns a 20 Hz world with one yard and room for 8 dogs.
func DefaultConfig() Config {
	return Config{
		TickRate:      20,
		SnapshotEvery: 2,
		MaxDogs:       8,
		Seed:          1,
		DogSpeed:      navmesh.DefaultSpeed,
		EventHistory:  200,
		Yard:          navmesh.DefaultYardConfig(),
		Nav:           nav.DefaultConfig(),
		Voice:         voice.DefaultConfig(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TickRate <= 0 {
		return errors.New("world: tick rate must be positive")
	}
	if c.SnapshotEvery < 1 {
		return errors.New("world: snapshot interval must be at least 1 tick")
	}
	if c.MaxDogs < 1 {
		return errors.New("world: max dogs must be at least 1")
	}
	if c.DogSpeed <= 0 {
		return errors.New("world: dog speed must be positive")
	}
	if c.EventHistory < 0 {
		return errors.New("world: event history must be non-negative")
	}
	if err := c.Yard.Validate(); err != nil {
		return err
	}
	if err := c.Nav.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if err := c.Voice.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

// WithTickRate returns a copy with the tick rate set.
func (c Config) WithTickRate(hz float64) Config {
	c.TickRate = hz
	return c
}

// WithSeed returns a copy with the seed set.
func (c Config) WithSeed(seed int64) Config {
	c.Seed = seed
	return c
}

// WithNav returns a copy with the navigation config set.
func (c Config) WithNav(n nav.Config) Config {
	c.Nav = n
	return c
}
