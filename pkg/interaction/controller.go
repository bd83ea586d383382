package interaction

import (
	"errors"
	"log/slog"
	"math"

	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/animation"
	"github.com/togedaeng/go-togedaeng/pkg/voice"
)

// Triggerer starts trigger clips. *animation.Animator implements it.
type Triggerer interface {
	SetTrigger(name string) (animation.Clip, error)
}

// Holder pauses wandering. *nav.Controller implements it.
type Holder interface {
	Hold(seconds float64)
}

// Performed describes a trick that started.
type Performed struct {
	Trick Trick
	Clip  animation.Clip
}

// Controller plays tricks: the dog stops, the clip plays, and wandering
// resumes after the clip's hold time.
type Controller struct {
	anim   Triggerer
	nav    Holder
	logger *slog.Logger

	onTrick func(Performed)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// OnTrick registers a callback fired after each trick starts.
func OnTrick(fn func(Performed)) Option {
	return func(c *Controller) { c.onTrick = fn }
}

// NewController creates a trick controller. holder may be nil, in which case
// tricks play without pausing navigation.
func NewController(anim Triggerer, holder Holder, opts ...Option) *Controller {
	c := &Controller{anim: anim, nav: holder}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.With("component", "interaction")
	}
	return c
}

// Play performs a trick.
func (c *Controller) Play(t Trick) (Performed, error) {
	if c.anim == nil {
		return Performed{}, errors.New("interaction: no animator")
	}
	trigger := t.Trigger()
	if trigger == "" {
		return Performed{}, &UnknownTrickError{Name: t.String()}
	}

	clip, err := c.anim.SetTrigger(trigger)
	if err != nil {
		c.logger.Error("trick failed", "trick", t, "error", err)
		return Performed{}, err
	}
	if c.nav != nil {
		c.nav.Hold(clip.Hold)
	}

	p := Performed{Trick: t, Clip: clip}
	c.logger.Info("trick", "trick", t, "hold", clip.Hold)
	if c.onTrick != nil {
		c.onTrick(p)
	}
	return p, nil
}

// PlayHand gives a paw.
func (c *Controller) PlayHand() (Performed, error) { return c.Play(TrickHand) }

// PlaySit sits.
func (c *Controller) PlaySit() (Performed, error) { return c.Play(TrickSit) }

// PlayLieDown lies down.
func (c *Controller) PlayLieDown() (Performed, error) { return c.Play(TrickDown) }

// Execute performs the trick for a voice command.
func (c *Controller) Execute(cmd voice.Command) (Performed, error) {
	t, err := FromCommand(cmd)
	if err != nil {
		return Performed{}, err
	}
	return c.Play(t)
}

// DragThreshold is how far, in pixels, a pointer may move before a press
// counts as a drag instead of a click.
const DragThreshold = 5.0

// ClickTracker separates clicks from camera drags.
type ClickTracker struct {
	Threshold float64

	pressed bool
	dragged bool
	downX   float64
	downY   float64
}

// NewClickTracker returns a tracker using DragThreshold.
func NewClickTracker() *ClickTracker {
	return &ClickTracker{Threshold: DragThreshold}
}

// Press records the pointer going down.
func (t *ClickTracker) Press(x, y float64) {
	t.pressed = true
	t.dragged = false
	t.downX, t.downY = x, y
}

// Move records pointer movement while pressed.
func (t *ClickTracker) Move(x, y float64) {
	if !t.pressed {
		return
	}
	if math.Hypot(x-t.downX, y-t.downY) > t.Threshold {
		t.dragged = true
	}
}

// Release ends the press and reports whether it was a click.
func (t *ClickTracker) Release(x, y float64) bool {
	if !t.pressed {
		return false
	}
	t.Move(x, y)
	t.pressed = false
	return !t.dragged
}

// Pressed reports whether the pointer is down.
func (t *ClickTracker) Pressed() bool {
	return t.pressed
}

// Dragging reports whether the current press has turned into a drag.
func (t *ClickTracker) Dragging() bool {
	return t.pressed && t.dragged
}
