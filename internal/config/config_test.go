package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "togedaeng.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Server.Port, DefaultPort)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.World.TickRate != 20 {
		t.Errorf("TickRate = %v, want 20", cfg.World.TickRate)
	}
	if len(cfg.Dogs) != 1 {
		t.Errorf("Dogs = %v, want one default dog", cfg.Dogs)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9090"
log:
  level: debug
  file:
    path: /tmp/togedaeng.log
    max_size_mb: 5
world:
  seed: 99
  nav:
    wander_radius: 8
    max_escape_attempts: 3
  yard:
    width: 20
  voice:
    max_distance: 1
    min_record_duration: 750ms
dogs: [Bori, Coco]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" || cfg.Log.Level != "debug" {
		t.Errorf("server/log = %+v %+v", cfg.Server, cfg.Log)
	}
	if cfg.Log.File.Path != "/tmp/togedaeng.log" || cfg.Log.File.MaxSizeMB != 5 {
		t.Errorf("log file = %+v", cfg.Log.File)
	}
	if cfg.World.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.World.Seed)
	}
	if cfg.World.Nav.WanderRadius != 8 || cfg.World.Nav.MaxEscapeAttempts != 3 {
		t.Errorf("nav = %+v", cfg.World.Nav)
	}
	// Unset fields keep their defaults
	if cfg.World.Nav.StuckThreshold != 2 {
		t.Errorf("StuckThreshold = %v, want default 2", cfg.World.Nav.StuckThreshold)
	}
	if cfg.World.Yard.Width != 20 || cfg.World.Yard.Depth != 30 {
		t.Errorf("yard = %vx%v, want 20x30", cfg.World.Yard.Width, cfg.World.Yard.Depth)
	}
	if cfg.World.Voice.MaxDistance != 1 || cfg.World.Voice.MinRecordDuration != 750*time.Millisecond {
		t.Errorf("voice = %+v", cfg.World.Voice)
	}
	if len(cfg.Dogs) != 2 || cfg.Dogs[1] != "Coco" {
		t.Errorf("Dogs = %v", cfg.Dogs)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [unclosed"},
		{"bad port", "server:\n  port: http\n"},
		{"invalid nav", "world:\n  nav:\n    wander_radius: -1\n"},
		{"too many dogs", "world:\n  max_dogs: 1\ndogs: [a, b]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); err == nil {
				t.Error("Load() should return error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvSeed, "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "7000" || cfg.Log.Level != "warn" || cfg.World.Seed != 5 {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv(EnvSeed, "many")
	if _, err := Load(""); err == nil {
		t.Error("Load() should reject a non-numeric seed")
	}
}

func TestPath(t *testing.T) {
	t.Setenv(EnvConfig, "")
	if got := Path(""); got != "" {
		t.Errorf("Path() = %q, want empty", got)
	}
	if got := Path("flag.yaml"); got != "flag.yaml" {
		t.Errorf("Path() = %q, want flag.yaml", got)
	}

	t.Setenv(EnvConfig, "/etc/togedaeng.yaml")
	if got := Path(""); got != "/etc/togedaeng.yaml" {
		t.Errorf("Path() = %q, want env path", got)
	}
	if got := Path("flag.yaml"); got != "flag.yaml" {
		t.Errorf("Path() = %q, explicit path should beat %s", got, EnvConfig)
	}
}

func TestApply(t *testing.T) {
	cfg := Default()
	err := cfg.Apply(Overrides{
		Port:     "9090",
		Dogs:     []string{"Bori", "Coco"},
		Seed:     7,
		LogLevel: "debug",
		LogFile:  "/tmp/dog.log",
		Debug:    true,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if cfg.Server.Port != "9090" || !cfg.Server.Debug || cfg.World.Seed != 7 {
		t.Errorf("server/world = %+v seed %d", cfg.Server, cfg.World.Seed)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File.Path != "/tmp/dog.log" || len(cfg.Dogs) != 2 {
		t.Errorf("log/dogs = %+v %v", cfg.Log, cfg.Dogs)
	}

	unchanged := Default()
	if err := unchanged.Apply(Overrides{}); err != nil {
		t.Fatalf("empty Apply() error = %v", err)
	}
	if unchanged.Server.Port != DefaultPort || len(unchanged.Dogs) != 1 {
		t.Errorf("empty overrides changed config: %+v", unchanged)
	}

	tests := []struct {
		name string
		o    Overrides
	}{
		{"bad port", Overrides{Port: "abc"}},
		{"too many dogs", Overrides{Dogs: make([]string, Default().World.MaxDogs+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.Apply(tt.o); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
