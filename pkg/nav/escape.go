package nav

// Direction is one of the eight local escape headings.
type Direction int

const (
	DirForward Direction = iota
	DirBack
	DirLeft
	DirRight
	DirForwardRight
	DirForwardLeft
	DirBackRight
	DirBackLeft
)

// escapeDirections holds the local-frame vector for each Direction (X right, Z forward).
var escapeDirections = [...]Vec3{
	DirForward:      {Z: 1},
	DirBack:         {Z: -1},
	DirLeft:         {X: -1},
	DirRight:        {X: 1},
	DirForwardRight: {X: 1, Z: 1},
	DirForwardLeft:  {X: -1, Z: 1},
	DirBackRight:    {X: 1, Z: -1},
	DirBackLeft:     {X: -1, Z: -1},
}

// Local returns the unit vector of d in the agent's frame.
func (d Direction) Local() Vec3 {
	if d < 0 || int(d) >= len(escapeDirections) {
		return Vec3{}
	}
	return escapeDirections[d].Normalize()
}

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirForward:
		return "forward"
	case DirBack:
		return "back"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirForwardRight:
		return "forward_right"
	case DirForwardLeft:
		return "forward_left"
	case DirBackRight:
		return "back_right"
	case DirBackLeft:
		return "back_left"
	default:
		return "unknown"
	}
}

// EscapeResult summarises one escape sequence.
type EscapeResult struct {
	Attempts  int
	Escaped   bool
	Direction Direction
	Target    Vec3
	FellBack  bool  // All attempts failed; a plain wander destination was requested
	Err       error // Fallback sampling error, if any
}

// EscapePlanner redirects a stuck agent toward a reachable nearby point.
type EscapePlanner struct {
	cfg      Config
	agent    Navigator
	surface  SurfaceSampler
	rng      Random
	fallback func() error
	emit     func(Event)
}

// NewEscapePlanner creates a planner. fallback is called when every attempt
// fails; emit may be nil.
func NewEscapePlanner(cfg Config, agent Navigator, surface SurfaceSampler, rng Random, fallback func() error, emit func(Event)) *EscapePlanner {
	if emit == nil {
		emit = func(Event) {}
	}
	return &EscapePlanner{
		cfg:      cfg,
		agent:    agent,
		surface:  surface,
		rng:      rng,
		fallback: fallback,
		emit:     emit,
	}
}

// Escape clears the current path and tries up to MaxEscapeAttempts random
// directions. A candidate is accepted only if the surface has a point near it
// and a complete path reaches that point.
func (p *EscapePlanner) Escape() EscapeResult {
	p.agent.ResetPath()

	origin := p.agent.Position()
	fwd := p.agent.Forward()

	var res EscapeResult
	for res.Attempts < p.cfg.MaxEscapeAttempts {
		res.Attempts++

		dir := Direction(p.rng.Intn(len(escapeDirections)))
		candidate := origin.Add(LocalToWorld(dir.Local(), fwd).Scale(p.cfg.EscapeRadius))

		if hit, ok := p.surface.SamplePosition(candidate, p.cfg.EscapeRadius); ok {
			exists, complete := p.agent.CalculatePath(hit)
			if exists && complete && p.agent.SetDestination(hit) {
				res.Escaped = true
				res.Direction = dir
				res.Target = hit
				p.emit(Event{Type: EventEscaped, Position: origin, Target: hit, Attempt: res.Attempts})
				return res
			}
		}

		p.emit(Event{Type: EventEscapeAttemptFailed, Position: origin, Target: candidate, Attempt: res.Attempts})
	}

	res.FellBack = true
	p.emit(Event{Type: EventEscapeFailed, Position: origin, Attempt: res.Attempts})
	if p.fallback != nil {
		res.Err = p.fallback()
	}
	return res
}
