package nav

import (
	"log/slog"

	"github.com/togedaeng/go-togedaeng/internal/log"
)

// Status is a read-only view of the controller state.
type Status struct {
	State      WanderState
	WaitTimer  float64
	Walking    bool
	Stuck      bool
	StuckTimer float64
	Escapes    int // Escape sequences started since creation
}

// Controller runs the wander, stuck and escape logic for one agent.
//
// Each Tick runs, in order: stuck check (and escape on a rising edge),
// animation update, wander update. The controller is not safe for concurrent
// use; the owner ticks it from a single goroutine.
type Controller struct {
	cfg    Config
	agent  Navigator
	anim   AnimationSink
	logger *slog.Logger

	listener Listener

	sampler *Sampler
	wander  *Wanderer
	stuck   *StuckDetector
	escape  *EscapePlanner

	started    bool
	escapes    int
	lastEscape EscapeResult
}

// Option configures a Controller.
type Option func(*Controller)

// WithListener registers a callback for controller events.
func WithListener(l Listener) Option {
	return func(c *Controller) { c.listener = l }
}

// WithLogger sets the logger used for transitions.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController wires the wander scheduler, stuck detector and escape planner
// around agent. anim may be nil.
func NewController(cfg Config, agent Navigator, surface SurfaceSampler, anim AnimationSink, rng Random, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrNilNavigator
	}
	if surface == nil {
		return nil, ErrNilSurface
	}
	if rng == nil {
		rng = NewRandom(1)
	}

	c := &Controller{
		cfg:   cfg,
		agent: agent,
		anim:  anim,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.With("component", "nav")
	}

	c.sampler = NewSampler(surface, rng, cfg.SampleRetries)
	c.wander = NewWanderer(cfg, agent, c.sampler, rng, c.emit)
	c.stuck = NewStuckDetector(cfg, agent)
	c.escape = NewEscapePlanner(cfg, agent, surface, rng, c.wander.NewDestination, c.emit)

	return c, nil
}

// Start assigns the first wander destination. Tick calls it on first use.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.stuck.Clear()
	if err := c.wander.NewDestination(); err != nil {
		c.logger.Warn("initial destination failed", "error", err)
	}
}

// Tick advances the controller by dt seconds. Negative dt is treated as zero.
func (c *Controller) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}
	if !c.started {
		c.Start()
	}

	switch c.stuck.Check(dt, c.wander.Waiting()) {
	case SignalStuck:
		c.emit(Event{Type: EventStuck, Position: c.agent.Position()})
		c.runEscape()
	case SignalPersisted:
		c.emit(Event{Type: EventStuckPersisted, Position: c.agent.Position()})
		c.runEscape()
	case SignalRecovered:
		c.emit(Event{Type: EventRecovered, Position: c.agent.Position()})
	}

	c.wander.UpdateAnimation(c.anim)

	if !c.stuck.Stuck() {
		c.wander.Update(dt)
	}

	// Arrival may have flipped to waiting after the stuck check ran.
	if c.wander.Waiting() {
		c.stuck.Suppress()
	}
}

// Hold stops the agent and keeps it idle for seconds before wandering resumes.
// Used while a trick animation plays.
func (c *Controller) Hold(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	c.started = true
	c.agent.ResetPath()
	c.stuck.Clear()
	c.wander.Wait(seconds)
	c.emit(Event{Type: EventHold, Position: c.agent.Position(), Wait: seconds})
}

// Status returns a snapshot of the controller state.
func (c *Controller) Status() Status {
	return Status{
		State:      c.wander.State(),
		WaitTimer:  c.wander.WaitTimer(),
		Walking:    c.wander.Walking(),
		Stuck:      c.stuck.Stuck(),
		StuckTimer: c.stuck.Timer(),
		Escapes:    c.escapes,
	}
}

// LastEscape returns the result of the most recent escape sequence.
func (c *Controller) LastEscape() EscapeResult {
	return c.lastEscape
}

// Config returns the controller configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) runEscape() {
	c.escapes++
	c.lastEscape = c.escape.Escape()
	if c.lastEscape.Err != nil {
		c.logger.Warn("escape fallback failed", "attempts", c.lastEscape.Attempts, "error", c.lastEscape.Err)
	}
}

func (c *Controller) emit(ev Event) {
	switch ev.Type {
	case EventStuck, EventStuckPersisted, EventEscapeFailed, EventSampleFailed:
		c.logger.Warn("nav "+ev.Type.String(),
			"x", ev.Position.X, "z", ev.Position.Z, "attempt", ev.Attempt)
	case EventEscaped, EventRecovered:
		c.logger.Info("nav "+ev.Type.String(),
			"x", ev.Position.X, "z", ev.Position.Z, "attempt", ev.Attempt)
	default:
		c.logger.Debug("nav "+ev.Type.String(),
			"x", ev.Position.X, "z", ev.Position.Z)
	}
	if c.listener != nil {
		c.listener(ev)
	}
}
