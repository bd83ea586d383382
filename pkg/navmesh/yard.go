package navmesh

import (
	"errors"
	"fmt"

	"github.com/aquilax/go-perlin"

	"github.com/togedaeng/go-togedaeng/pkg/nav"
)

// YardConfig describes a procedurally generated yard.
type YardConfig struct {
	Width    float64 `yaml:"width"`
	Depth    float64 `yaml:"depth"`
	CellSize float64 `yaml:"cell_size"`

	// Cells whose noise value exceeds Threshold become obstacles.
	// Noise values are roughly in [-1, 1]; 1 or more disables obstacles.
	Threshold  float64 `yaml:"threshold"`
	NoiseScale float64 `yaml:"noise_scale"`

	// Walls blocks the outer ring of cells.
	Walls bool `yaml:"walls"`

	// Cells within ClearRadius of the spawn point are always walkable.
	// A zero Spawn means the center of the yard.
	ClearRadius float64  `yaml:"clear_radius"`
	Spawn       nav.Vec3 `yaml:"-"`
}

// SpawnPoint returns where new dogs appear.
func (c YardConfig) SpawnPoint() nav.Vec3 {
	if c.Spawn == (nav.Vec3{}) {
		return nav.Vec3{X: c.Width / 2, Z: c.Depth / 2}
	}
	return c.Spawn.Flat()
}

// DefaultYardConfig returns a 30x30 yard with scattered bushes.
func DefaultYardConfig() YardConfig {
	return YardConfig{
		Width:       30,
		Depth:       30,
		CellSize:    0.5,
		Threshold:   0.35,
		NoiseScale:  0.15,
		Walls:       true,
		ClearRadius: 3,
	}
}

// Validate checks the yard dimensions.
func (c YardConfig) Validate() error {
	if c.Width <= 0 || c.Depth <= 0 {
		return errors.New("navmesh: yard size must be positive")
	}
	if c.CellSize <= 0 {
		return errors.New("navmesh: cell size must be positive")
	}
	if c.NoiseScale <= 0 {
		return errors.New("navmesh: noise scale must be positive")
	}
	return nil
}

// GenerateYard builds a grid with perlin-noise obstacles. The same seed
// always produces the same yard.
func GenerateYard(cfg YardConfig, seed int64) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := NewGrid(cfg.Width, cfg.Depth, cfg.CellSize)
	noise := perlin.NewPerlin(2, 2, 3, seed)
	spawn := cfg.SpawnPoint()

	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			c := g.Center(col, row)
			if cfg.ClearRadius > 0 && c.Dist(spawn) <= cfg.ClearRadius {
				continue
			}
			edge := col == 0 || row == 0 || col == g.cols-1 || row == g.rows-1
			if cfg.Walls && edge {
				g.walkable[g.index(col, row)] = false
				continue
			}
			if noise.Noise2D(c.X*cfg.NoiseScale, c.Z*cfg.NoiseScale) > cfg.Threshold {
				g.walkable[g.index(col, row)] = false
			}
		}
	}

	if g.WalkableCount() == 0 {
		return nil, fmt.Errorf("navmesh: yard %vx%v has no walkable cells", cfg.Width, cfg.Depth)
	}
	return g, nil
}
