package nav

import "math/rand/v2"

// PCGRandom is a seeded Random backed by math/rand/v2.
// It is not safe for concurrent use; give each controller its own.
type PCGRandom struct {
	r *rand.Rand
}

// NewRandom returns a deterministic Random for the given seed.
func NewRandom(seed uint64) *PCGRandom {
	return &PCGRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Range returns a uniform float in [min, max].
func (p *PCGRandom) Range(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + p.r.Float64()*(max-min)
}

// InsideUnitSphere returns a uniform point inside the unit sphere.
func (p *PCGRandom) InsideUnitSphere() Vec3 {
	for {
		v := Vec3{
			X: p.r.Float64()*2 - 1,
			Y: p.r.Float64()*2 - 1,
			Z: p.r.Float64()*2 - 1,
		}
		if v.X*v.X+v.Y*v.Y+v.Z*v.Z <= 1 {
			return v
		}
	}
}

// Intn returns a uniform int in [0, n). n <= 0 yields 0.
func (p *PCGRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return p.r.IntN(n)
}
