package world

import (
	"math"

	"github.com/togedaeng/go-togedaeng/pkg/animation"
	"github.com/togedaeng/go-togedaeng/pkg/interaction"
	"github.com/togedaeng/go-togedaeng/pkg/nav"
	"github.com/togedaeng/go-togedaeng/pkg/navmesh"
	"github.com/togedaeng/go-togedaeng/pkg/protocol"
	"github.com/togedaeng/go-togedaeng/pkg/voice"
)

// Dog is one wandering agent in the yard.
type Dog struct {
	ID   string
	Name string

	agent    *navmesh.Agent
	nav      *nav.Controller
	anim     *animation.Animator
	tricks   *interaction.Controller
	recorder *voice.Recorder
}

// step advances the dog by dt: controller first, then the agent moves, then
// clips run down.
func (d *Dog) step(dt float64) {
	d.nav.Tick(dt)
	d.agent.Step(dt)
	d.anim.Update(dt)
}

func (d *Dog) state() protocol.DogState {
	st := d.nav.Status()
	s := protocol.DogState{
		ID:         d.ID,
		Name:       d.Name,
		Position:   toPoint(d.agent.Position()),
		Forward:    toPoint(d.agent.Forward()),
		Speed:      d.agent.Velocity().Len(),
		Remaining:  d.agent.RemainingDistance(),
		State:      st.State.String(),
		WaitTimer:  st.WaitTimer,
		Walking:    st.Walking,
		Stuck:      st.Stuck,
		StuckTimer: st.StuckTimer,
		Escapes:    st.Escapes,
		Pinned:     d.agent.Pinned(),
		Clip:       d.anim.Current(),
		Recording:  d.recorder.Recording(),
	}
	if math.IsInf(s.Remaining, 1) {
		s.Remaining = -1
	}
	if d.agent.HasPath() {
		p := toPoint(d.agent.Destination())
		s.Destination = &p
	}
	return s
}

// clipEvent converts trigger starts and clip ends. Bool flips are already
// reported as walk events.
func clipEvent(dogID string, elapsed float64, pos nav.Vec3, c animation.Change) (protocol.EventData, bool) {
	ev := protocol.EventData{DogID: dogID, Time: elapsed, Position: toPoint(pos), Clip: c.Name}
	switch c.Kind {
	case animation.ChangeTrigger:
		ev.Type = "clip_started"
	case animation.ChangeClipEnded:
		ev.Type = "clip_ended"
	default:
		return protocol.EventData{}, false
	}
	return ev, true
}

func toPoint(v nav.Vec3) protocol.Point {
	return protocol.Point{X: v.X, Y: v.Y, Z: v.Z}
}

func eventData(dogID string, elapsed float64, ev nav.Event) protocol.EventData {
	out := protocol.EventData{
		DogID:    dogID,
		Type:     ev.Type.String(),
		Time:     elapsed,
		Position: toPoint(ev.Position),
		Attempt:  ev.Attempt,
		Wait:     ev.Wait,
	}
	switch ev.Type {
	case nav.EventDestination, nav.EventEscaped, nav.EventEscapeAttemptFailed:
		p := toPoint(ev.Target)
		out.Target = &p
	}
	return out
}
