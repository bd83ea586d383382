package nav

import (
	"errors"
	"math"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func stuckConfig() Config {
	return DefaultConfig().WithStuck(2.0, 0.1)
}

func TestController_StuckTriggersOnce(t *testing.T) {
	agent := newFakeAgent()
	agent.vel = Vec3{X: 0.05}
	rec := &recorder{}
	c := newTestController(t, stuckConfig(), agent, &fakeSurface{}, nil, rec)

	for i := 0; i < 21; i++ {
		c.Tick(0.1)
	}

	if !c.Status().Stuck {
		t.Fatal("expected agent to be flagged stuck after 2.1s of low motion")
	}
	if got := rec.count(EventStuck); got != 1 {
		t.Errorf("EventStuck count = %d, want 1", got)
	}
	if got := c.Status().Escapes; got != 1 {
		t.Errorf("escapes = %d, want 1", got)
	}
	if agent.resetCalls != 1 {
		t.Errorf("ResetPath calls = %d, want 1", agent.resetCalls)
	}
	if !c.LastEscape().Escaped {
		t.Error("escape with an always-valid surface should succeed")
	}
	if got := rec.count(EventEscaped); got != 1 {
		t.Errorf("EventEscaped count = %d, want 1", got)
	}
}

func TestController_SpeedJumpResetsTimer(t *testing.T) {
	agent := newFakeAgent()
	agent.vel = Vec3{X: 0.05}
	rec := &recorder{}
	c := newTestController(t, stuckConfig(), agent, &fakeSurface{}, nil, rec)

	for i := 1; i <= 21; i++ {
		if i == 10 {
			agent.vel = Vec3{X: 0.5}
		}
		c.Tick(0.1)
		if i == 10 && c.Status().StuckTimer != 0 {
			t.Fatalf("stuck timer at speed jump = %v, want 0", c.Status().StuckTimer)
		}
	}

	if rec.count(EventStuck) != 0 {
		t.Error("stuck should never trigger once the agent speeds up")
	}
	if c.Status().Stuck {
		t.Error("agent should not be stuck")
	}
}

func TestController_DisplacementPreventsStuck(t *testing.T) {
	agent := newFakeAgent()
	agent.vel = Vec3{} // engine reports zero velocity but the body moves
	rec := &recorder{}
	c := newTestController(t, stuckConfig(), agent, &fakeSurface{}, nil, rec)

	for i := 0; i < 50; i++ {
		agent.pos = agent.pos.Add(Vec3{X: 0.2})
		c.Tick(0.1)
	}

	if rec.count(EventStuck) != 0 {
		t.Error("displacement above threshold should prevent stuck detection")
	}
}

func TestController_WaitingSuppressesStuckTimer(t *testing.T) {
	agent := newFakeAgent()
	agent.remainingOnSet = 0.2 // every destination counts as reached
	rec := &recorder{}
	c := newTestController(t, stuckConfig().WithWait(3, 3), agent, &fakeSurface{}, nil, rec)

	sawWaiting := false
	for i := 0; i < 200; i++ {
		c.Tick(0.05)
		st := c.Status()
		if st.State == StateWaiting {
			sawWaiting = true
			if st.StuckTimer != 0 {
				t.Fatalf("tick %d: stuck timer %v while waiting", i, st.StuckTimer)
			}
		}
	}

	if !sawWaiting {
		t.Fatal("expected the wanderer to reach the waiting state")
	}
	if rec.count(EventStuck) != 0 {
		t.Error("waiting agent must never be flagged stuck")
	}
}

func TestController_EscapeFallsBackToWander(t *testing.T) {
	agent := newFakeAgent()
	agent.vel = Vec3{}
	surface := &fakeSurface{}
	rec := &recorder{}
	cfg := stuckConfig().WithEscape(3, 5)
	c := newTestController(t, cfg, agent, surface, nil, rec)

	c.Start()
	// From here on nothing is navigable.
	surface.fn = func(Vec3, float64) (Vec3, bool) { return Vec3{}, false }
	before := surface.calls

	// Stop on the escape tick so later wander retries don't touch the count.
	for i := 0; i < 30 && rec.count(EventEscapeFailed) == 0; i++ {
		c.Tick(0.1)
	}

	res := c.LastEscape()
	if res.Attempts != 5 {
		t.Errorf("attempts = %d, want 5", res.Attempts)
	}
	if !res.FellBack {
		t.Error("expected fallback to wander sampling")
	}
	if !errors.Is(res.Err, ErrNoNavigablePoint) {
		t.Errorf("fallback error = %v, want ErrNoNavigablePoint", res.Err)
	}
	if got := rec.count(EventEscapeAttemptFailed); got != 5 {
		t.Errorf("failed attempts = %d, want 5", got)
	}
	if got := rec.count(EventEscapeFailed); got != 1 {
		t.Errorf("EventEscapeFailed = %d, want 1", got)
	}
	// 5 escape samples + SampleRetries fallback samples
	if got := surface.calls - before; got != 5+cfg.SampleRetries {
		t.Errorf("surface samples = %d, want %d", got, 5+cfg.SampleRetries)
	}
}

func TestController_UnreachableCandidatesAreDiscarded(t *testing.T) {
	agent := newFakeAgent()
	agent.calcComplete = false
	rec := &recorder{}
	c := newTestController(t, stuckConfig(), agent, &fakeSurface{}, nil, rec)

	for i := 0; i < 21; i++ {
		c.Tick(0.1)
	}

	res := c.LastEscape()
	if res.Escaped {
		t.Error("partial paths must not be accepted")
	}
	if agent.calcCalls != res.Attempts {
		t.Errorf("CalculatePath calls = %d, want %d", agent.calcCalls, res.Attempts)
	}
	if !res.FellBack || res.Err != nil {
		t.Errorf("expected a successful wander fallback, got %+v", res)
	}
}

func TestController_EscapeAttemptsBounded(t *testing.T) {
	for _, attempts := range []int{0, 1, 3, 8} {
		agent := newFakeAgent()
		rec := &recorder{}
		cfg := stuckConfig().WithEscape(3, attempts)
		c := newTestController(t, cfg, agent, &fakeSurface{}, nil, rec)
		agent.calcExists = false

		for i := 0; i < 100; i++ {
			c.Tick(0.1)
		}

		for _, ev := range rec.of(EventEscapeAttemptFailed) {
			if ev.Attempt > attempts {
				t.Errorf("attempts=%d: saw attempt %d", attempts, ev.Attempt)
			}
		}
		if c.LastEscape().Attempts > attempts {
			t.Errorf("attempts=%d: last escape used %d", attempts, c.LastEscape().Attempts)
		}
	}
}

func TestController_PersistentStuckRestartsEpisode(t *testing.T) {
	agent := newFakeAgent()
	rec := &recorder{}
	c := newTestController(t, stuckConfig(), agent, &fakeSurface{}, nil, rec)

	// 4.2s: one rising edge, then one persisted restart.
	for i := 0; i < 42; i++ {
		c.Tick(0.1)
	}

	if got := rec.count(EventStuck); got != 1 {
		t.Errorf("EventStuck = %d, want 1", got)
	}
	if got := rec.count(EventStuckPersisted); got != 1 {
		t.Errorf("EventStuckPersisted = %d, want 1", got)
	}
	if got := c.Status().Escapes; got != 2 {
		t.Errorf("escapes = %d, want 2", got)
	}
}

func TestController_RecoversWhenMoving(t *testing.T) {
	agent := newFakeAgent()
	rec := &recorder{}
	c := newTestController(t, stuckConfig(), agent, &fakeSurface{}, nil, rec)

	for i := 0; i < 21; i++ {
		c.Tick(0.1)
	}
	if !c.Status().Stuck {
		t.Fatal("precondition: expected stuck")
	}

	agent.vel = Vec3{Z: 1}
	c.Tick(0.1)

	if c.Status().Stuck {
		t.Error("moving agent should clear the stuck flag")
	}
	if rec.count(EventRecovered) != 1 {
		t.Errorf("EventRecovered = %d, want 1", rec.count(EventRecovered))
	}
}

func TestController_ZeroDtIsIdempotent(t *testing.T) {
	t.Run("waiting", func(t *testing.T) {
		agent := newFakeAgent()
		agent.remainingOnSet = 0
		c := newTestController(t, DefaultConfig(), agent, &fakeSurface{}, nil, &recorder{})

		c.Tick(0.1)
		c.Tick(0.1)
		if c.Status().State != StateWaiting {
			t.Fatalf("precondition: expected waiting, got %v", c.Status().State)
		}
		before := c.Status()
		for i := 0; i < 10; i++ {
			c.Tick(0)
		}
		after := c.Status()
		if after.WaitTimer != before.WaitTimer || after.StuckTimer != before.StuckTimer {
			t.Errorf("dt=0 changed timers: before %+v after %+v", before, after)
		}
	})

	t.Run("moving and arrived", func(t *testing.T) {
		agent := newFakeAgent()
		rec := &recorder{}
		c := newTestController(t, DefaultConfig(), agent, &fakeSurface{}, nil, rec)

		c.Tick(0.1)
		if c.Status().State != StateMoving {
			t.Fatalf("precondition: expected moving, got %v", c.Status().State)
		}
		agent.remaining = 0

		for i := 0; i < 10; i++ {
			c.Tick(0)
		}
		st := c.Status()
		if st.State != StateMoving || st.WaitTimer != 0 {
			t.Errorf("dt=0 ran the arrival: %+v", st)
		}

		c.Tick(0.1)
		st = c.Status()
		cfg := DefaultConfig()
		if st.State != StateWaiting || st.WaitTimer < cfg.MinWait || st.WaitTimer > cfg.MaxWait {
			t.Errorf("expected arrival on the next real tick, got %+v", st)
		}
	})

	t.Run("accumulating", func(t *testing.T) {
		agent := newFakeAgent()
		c := newTestController(t, stuckConfig(), agent, &fakeSurface{}, nil, &recorder{})

		for i := 0; i < 5; i++ {
			c.Tick(0.1)
		}
		before := c.Status().StuckTimer
		if before == 0 {
			t.Fatal("precondition: expected stuck timer to accumulate")
		}
		for i := 0; i < 10; i++ {
			c.Tick(0)
		}
		if after := c.Status().StuckTimer; after != before {
			t.Errorf("dt=0 changed stuck timer: %v -> %v", before, after)
		}
	})
}

func TestController_WalkAnimation(t *testing.T) {
	agent := newFakeAgent()
	sink := &fakeSink{}
	rec := &recorder{}
	c := newTestController(t, DefaultConfig(), agent, &fakeSurface{}, sink, rec)

	speeds := []float64{0, 0.04, 0.3, 0.5, 0.5, 0.01, 0, 0.2}
	for _, s := range speeds {
		agent.vel = Vec3{X: s}
		agent.pos = agent.pos.Add(Vec3{X: 1}) // keep stuck detection quiet
		c.Tick(0.1)
	}

	if sink.sets != len(speeds) {
		t.Errorf("SetBool calls = %d, want %d", sink.sets, len(speeds))
	}
	if !sink.bools[WalkParam] {
		t.Error("final walk bool should be true")
	}
	if got := rec.count(EventWalkStarted); got != 2 {
		t.Errorf("walk started = %d, want 2", got)
	}
	if got := rec.count(EventWalkStopped); got != 1 {
		t.Errorf("walk stopped = %d, want 1", got)
	}
}

func TestController_Hold(t *testing.T) {
	agent := newFakeAgent()
	rec := &recorder{}
	c := newTestController(t, DefaultConfig().WithWait(2, 2), agent, &fakeSurface{}, nil, rec)

	c.Tick(0.1)
	c.Hold(1.5)

	st := c.Status()
	if st.State != StateWaiting || !floatEquals(st.WaitTimer, 1.5) {
		t.Fatalf("after Hold: %+v", st)
	}
	if agent.hasPath {
		t.Error("Hold should clear the path")
	}
	if rec.count(EventHold) != 1 {
		t.Error("expected EventHold")
	}

	sets := len(agent.setCalls)
	for i := 0; i < 16; i++ {
		c.Tick(0.1)
	}
	if len(agent.setCalls) != sets+1 {
		t.Errorf("expected one new destination after the hold, got %d", len(agent.setCalls)-sets)
	}
	if c.Status().State != StateMoving {
		t.Errorf("state = %v, want moving", c.Status().State)
	}
}

func TestNewController_Errors(t *testing.T) {
	if _, err := NewController(DefaultConfig(), nil, &fakeSurface{}, nil, nil); !errors.Is(err, ErrNilNavigator) {
		t.Errorf("nil navigator: got %v", err)
	}
	if _, err := NewController(DefaultConfig(), newFakeAgent(), nil, nil, nil); !errors.Is(err, ErrNilSurface) {
		t.Errorf("nil surface: got %v", err)
	}
	bad := DefaultConfig()
	bad.WanderRadius = 0
	if _, err := NewController(bad, newFakeAgent(), &fakeSurface{}, nil, nil); err == nil {
		t.Error("invalid config should be rejected")
	}
}
