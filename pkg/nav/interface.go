package nav

// PathController issues path requests to the pathfinding provider.
type PathController interface {
	// SetDestination asks the agent to travel to p.
	// Returns false if the provider rejected the request.
	SetDestination(p Vec3) bool

	// ResetPath clears the current path and destination.
	ResetPath()

	// CalculatePath computes a path from the agent's position to p without
	// assigning it. exists reports whether any path was found and complete
	// whether it actually reaches p.
	CalculatePath(p Vec3) (exists, complete bool)
}

// AgentState exposes the provider-owned agent state. The controller only reads it.
type AgentState interface {
	Position() Vec3
	Velocity() Vec3
	Forward() Vec3
	HasPath() bool
	PathPending() bool
	RemainingDistance() float64
}

// Navigator is the full navigation provider the controller drives.
type Navigator interface {
	PathController
	AgentState
}

// SurfaceSampler finds the nearest navigable point to p within tolerance.
type SurfaceSampler interface {
	SamplePosition(p Vec3, tolerance float64) (Vec3, bool)
}

// AnimationSink receives walk/idle state. Triggers are handled elsewhere.
type AnimationSink interface {
	SetBool(name string, value bool)
}

// Random is the randomness source used for waits, samples and directions.
type Random interface {
	// Range returns a uniform float in [min, max].
	Range(min, max float64) float64

	// InsideUnitSphere returns a uniform point inside the unit sphere.
	InsideUnitSphere() Vec3

	// Intn returns a uniform int in [0, n).
	Intn(n int) int
}
