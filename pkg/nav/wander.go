package nav

import "fmt"

// WalkParam is the animator bool driven by agent speed.
const WalkParam = "isWalking"

// WanderState is the phase of the wander scheduler.
type WanderState int

const (
	// StateMoving means the agent is travelling to a destination.
	StateMoving WanderState = iota

	// StateWaiting means the agent idles until its wait timer runs out.
	StateWaiting
)

// String returns a human-readable state name.
func (s WanderState) String() string {
	switch s {
	case StateMoving:
		return "moving"
	case StateWaiting:
		return "waiting"
	default:
		return "unknown"
	}
}

// Wanderer alternates between moving to random destinations and waiting.
type Wanderer struct {
	cfg     Config
	agent   Navigator
	sampler *Sampler
	rng     Random
	emit    func(Event)

	waiting   bool
	waitTimer float64
	walking   bool
}

// NewWanderer creates a wander scheduler. emit may be nil.
func NewWanderer(cfg Config, agent Navigator, sampler *Sampler, rng Random, emit func(Event)) *Wanderer {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Wanderer{
		cfg:     cfg,
		agent:   agent,
		sampler: sampler,
		rng:     rng,
		emit:    emit,
	}
}

// NewDestination samples a point within WanderRadius of the agent and sends
// it there. On failure the wanderer parks in Waiting with an expired timer so
// the next Update tries again.
func (w *Wanderer) NewDestination() error {
	pos := w.agent.Position()
	p, err := w.sampler.RandomPoint(pos, w.cfg.WanderRadius)
	if err == nil && !w.agent.SetDestination(p) {
		err = fmt.Errorf("%w: (%.2f, %.2f, %.2f)", ErrDestinationRejected, p.X, p.Y, p.Z)
	}
	if err != nil {
		w.waiting = true
		w.waitTimer = 0
		w.emit(Event{Type: EventSampleFailed, Position: pos})
		return err
	}

	w.waiting = false
	w.waitTimer = 0
	w.emit(Event{Type: EventDestination, Position: pos, Target: p})
	return nil
}

// Update advances the scheduler by dt seconds. A zero dt changes nothing, not
// even arrival, since arriving draws a fresh wait.
func (w *Wanderer) Update(dt float64) {
	if dt <= 0 {
		return
	}
	if !w.waiting {
		if !w.agent.PathPending() && w.agent.RemainingDistance() < w.cfg.ArriveDistance {
			w.waiting = true
			w.waitTimer = w.rng.Range(w.cfg.MinWait, w.cfg.MaxWait)
			w.emit(Event{Type: EventArrived, Position: w.agent.Position(), Wait: w.waitTimer})
		}
		return
	}

	w.waitTimer -= dt
	if w.waitTimer <= 0 {
		_ = w.NewDestination()
	}
}

// UpdateAnimation drives the walk bool from agent speed and emits an event
// each time it flips.
func (w *Wanderer) UpdateAnimation(sink AnimationSink) {
	shouldWalk := w.agent.Velocity().Len() > w.cfg.WalkSpeedThreshold
	if sink != nil {
		sink.SetBool(WalkParam, shouldWalk)
	}
	if shouldWalk == w.walking {
		return
	}
	w.walking = shouldWalk
	if shouldWalk {
		w.emit(Event{Type: EventWalkStarted, Position: w.agent.Position()})
	} else {
		w.emit(Event{Type: EventWalkStopped, Position: w.agent.Position()})
	}
}

// Wait forces the Waiting state for seconds.
func (w *Wanderer) Wait(seconds float64) {
	w.waiting = true
	w.waitTimer = seconds
}

// State returns the current phase.
func (w *Wanderer) State() WanderState {
	if w.waiting {
		return StateWaiting
	}
	return StateMoving
}

// Waiting reports whether the scheduler is idling.
func (w *Wanderer) Waiting() bool { return w.waiting }

// WaitTimer returns the seconds left before the next destination.
func (w *Wanderer) WaitTimer() float64 { return w.waitTimer }

// Walking reports the last walk state sent to the animator.
func (w *Wanderer) Walking() bool { return w.walking }
