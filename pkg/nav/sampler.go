package nav

import "fmt"

// Sampler finds random navigable points around an origin.
type Sampler struct {
	surface SurfaceSampler
	rng     Random
	retries int
}

// NewSampler creates a Sampler that tries at most retries candidates per call.
func NewSampler(surface SurfaceSampler, rng Random, retries int) *Sampler {
	if retries < 1 {
		retries = 1
	}
	return &Sampler{surface: surface, rng: rng, retries: retries}
}

// RandomPoint returns a navigable point near a uniform sample inside the
// sphere of radius around origin. The radius doubles as the surface
// sampling tolerance.
func (s *Sampler) RandomPoint(origin Vec3, radius float64) (Vec3, error) {
	for i := 0; i < s.retries; i++ {
		candidate := origin.Add(s.rng.InsideUnitSphere().Scale(radius))
		if p, ok := s.surface.SamplePosition(candidate, radius); ok {
			return p, nil
		}
	}
	return Vec3{}, fmt.Errorf("%w: %d samples within %.2f of (%.2f, %.2f, %.2f)",
		ErrNoNavigablePoint, s.retries, radius, origin.X, origin.Y, origin.Z)
}
