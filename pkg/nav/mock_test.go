package nav

import "github.com/togedaeng/go-togedaeng/internal/log"

// fakeAgent is a scriptable Navigator that records path requests.
type fakeAgent struct {
	pos, vel, fwd Vec3
	hasPath       bool
	pending       bool
	remaining     float64

	remainingOnSet float64 // remaining distance reported after SetDestination
	calcExists     bool
	calcComplete   bool
	reject         bool

	setCalls   []Vec3
	resetCalls int
	calcCalls  int
}

func newFakeAgent() *fakeAgent {
	return &fakeAgent{
		fwd:            Forward,
		remainingOnSet: 5,
		calcExists:     true,
		calcComplete:   true,
	}
}

func (f *fakeAgent) SetDestination(p Vec3) bool {
	if f.reject {
		return false
	}
	f.setCalls = append(f.setCalls, p)
	f.hasPath = true
	f.remaining = f.remainingOnSet
	return true
}

func (f *fakeAgent) ResetPath() {
	f.resetCalls++
	f.hasPath = false
	f.remaining = 0
}

func (f *fakeAgent) CalculatePath(p Vec3) (bool, bool) {
	f.calcCalls++
	return f.calcExists, f.calcComplete
}

func (f *fakeAgent) Position() Vec3             { return f.pos }
func (f *fakeAgent) Velocity() Vec3             { return f.vel }
func (f *fakeAgent) Forward() Vec3              { return f.fwd }
func (f *fakeAgent) HasPath() bool              { return f.hasPath }
func (f *fakeAgent) PathPending() bool          { return f.pending }
func (f *fakeAgent) RemainingDistance() float64 { return f.remaining }

// fakeSurface answers SamplePosition with fn, or echoes the flattened point.
type fakeSurface struct {
	calls int
	fn    func(p Vec3, tolerance float64) (Vec3, bool)
}

func (s *fakeSurface) SamplePosition(p Vec3, tolerance float64) (Vec3, bool) {
	s.calls++
	if s.fn != nil {
		return s.fn(p, tolerance)
	}
	return p.Flat(), true
}

func missSurface() *fakeSurface {
	return &fakeSurface{fn: func(Vec3, float64) (Vec3, bool) { return Vec3{}, false }}
}

// fakeSink records the last value of every bool parameter.
type fakeSink struct {
	bools map[string]bool
	sets  int
}

func (s *fakeSink) SetBool(name string, value bool) {
	if s.bools == nil {
		s.bools = make(map[string]bool)
	}
	s.bools[name] = value
	s.sets++
}

// recorder collects controller events.
type recorder struct {
	events []Event
}

func (r *recorder) listen(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) of(t EventType) []Event {
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestController(t interface{ Fatalf(string, ...any) }, cfg Config, agent *fakeAgent, surface *fakeSurface, sink *fakeSink, rec *recorder) *Controller {
	var anim AnimationSink
	if sink != nil {
		anim = sink
	}
	c, err := NewController(cfg, agent, surface, anim, NewRandom(42),
		WithListener(rec.listen), WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}
