package voice

import (
	"errors"
	"time"
)

// Config holds tunable parameters for command matching.
type Config struct {
	// MaxDistance is the largest Levenshtein distance accepted between a
	// transcript word and a command word (default: 2).
	MaxDistance int `yaml:"max_distance"`

	// ScaleByLength caps the distance for short command words at half their
	// length, so one-rune words like 손 only match exactly (default: true).
	ScaleByLength bool `yaml:"scale_by_length"`

	// MinRecordDuration rejects accidental taps (default: 500ms).
	MinRecordDuration time.Duration `yaml:"min_record_duration"`

	// Language is passed to the recognizer as a hint (default: "ko").
	Language string `yaml:"language"`
}

// DefaultConfig returns a Config with the defaults used by the app.
func DefaultConfig() Config {
	return Config{
		MaxDistance:       2,
		ScaleByLength:     true,
		MinRecordDuration: 500 * time.Millisecond,
		Language:          "ko",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxDistance < 0 {
		return errors.New("voice: max distance must be non-negative")
	}
	if c.MinRecordDuration < 0 {
		return errors.New("voice: min record duration must be non-negative")
	}
	return nil
}

// WithMaxDistance returns a copy with the distance limit set.
func (c Config) WithMaxDistance(d int) Config {
	c.MaxDistance = d
	return c
}

// WithScaleByLength returns a copy with length scaling toggled.
func (c Config) WithScaleByLength(scale bool) Config {
	c.ScaleByLength = scale
	return c
}
