// Package config loads go-togedaeng configuration from YAML and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/world"
)

// Defaults.
const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfig   = "TOGEDAENG_CONFIG"
	EnvPort     = "TOGEDAENG_PORT"
	EnvLogLevel = "TOGEDAENG_LOG_LEVEL"
	EnvSeed     = "TOGEDAENG_SEED"
)

// Server configures the HTTP server.
type Server struct {
	Port   string `yaml:"port"`
	Static string `yaml:"static"` // Directory served at /, empty to disable
	Debug  bool   `yaml:"debug"`  // Log every request
}

// Log configures logging.
type Log struct {
	Level string         `yaml:"level"`
	File  log.FileConfig `yaml:"file"`
}

// File is the top-level configuration file.
type File struct {
	Server Server       `yaml:"server"`
	Log    Log          `yaml:"log"`
	World  world.Config `yaml:"world"`

	// Dogs are spawned by name at startup.
	Dogs []string `yaml:"dogs"`

	// Clips optionally points at a YAML file replacing the built-in tricks.
	Clips string `yaml:"clips"`
}

// Default returns the configuration used when no file is given.
func Default() File {
	return File{
		Server: Server{Port: DefaultPort},
		Log:    Log{Level: DefaultLogLevel},
		World:  world.DefaultConfig(),
		Dogs:   []string{"Togedaeng"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (File, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return File{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return File{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return File{}, err
	}
	if err := cfg.Validate(); err != nil {
		return File{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TOGEDAENG_* variables.
func (f *File) ApplyEnv() error {
	if port := os.Getenv(EnvPort); port != "" {
		f.Server.Port = port
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		f.Log.Level = level
	}
	if seed := os.Getenv(EnvSeed); seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeed, err)
		}
		f.World.Seed = n
	}
	return nil
}

// Validate checks the configuration for errors.
func (f *File) Validate() error {
	if f.Server.Port == "" {
		return errors.New("config: server port is required")
	}
	if _, err := strconv.Atoi(f.Server.Port); err != nil {
		return fmt.Errorf("config: invalid port %q", f.Server.Port)
	}
	if len(f.Dogs) > f.World.MaxDogs {
		return fmt.Errorf("config: %d startup dogs exceed max_dogs %d", len(f.Dogs), f.World.MaxDogs)
	}
	return f.World.Validate()
}

// Overrides are command-line settings applied over the loaded file. Zero
// values leave the file's setting alone.
type Overrides struct {
	Port     string
	Dogs     []string
	Seed     int64
	LogLevel string
	LogFile  string
	Debug    bool
}

// Apply sets every non-zero override and validates the result again.
func (f *File) Apply(o Overrides) error {
	if o.Port != "" {
		f.Server.Port = o.Port
	}
	if len(o.Dogs) > 0 {
		f.Dogs = o.Dogs
	}
	if o.Seed != 0 {
		f.World.Seed = o.Seed
	}
	if o.LogLevel != "" {
		f.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		f.Log.File.Path = o.LogFile
	}
	if o.Debug {
		f.Server.Debug = true
	}
	return f.Validate()
}

// Path returns the config file to load: an explicit path wins, then
// TOGEDAENG_CONFIG. Empty means built-in defaults.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvConfig)
}
