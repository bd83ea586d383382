package animation

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/togedaeng/go-togedaeng/pkg/nav"
)

// Animator holds bool parameters and plays trigger clips. Only one clip
// plays at a time; a new trigger replaces the current clip. Safe for
// concurrent use.
type Animator struct {
	mu    sync.RWMutex
	clips map[string]Clip
	bools map[string]bool

	current   string
	remaining float64

	onChange ChangeFunc
}

// NewAnimator creates an animator with the given clips.
func NewAnimator(clips []Clip) *Animator {
	a := &Animator{
		clips: make(map[string]Clip, len(clips)),
		bools: make(map[string]bool),
	}
	for _, c := range clips {
		a.clips[c.Trigger] = c
	}
	return a
}

// NewDefaultAnimator creates an animator with the built-in trick clips.
func NewDefaultAnimator() (*Animator, error) {
	clips, err := BuiltinClips()
	if err != nil {
		return nil, err
	}
	return NewAnimator(clips), nil
}

// Register adds or replaces a clip.
func (a *Animator) Register(c Clip) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clips[c.Trigger] = c
}

// OnChange sets the change callback. Pass nil to remove it.
func (a *Animator) OnChange(fn ChangeFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = fn
}

// Clip returns the clip registered for trigger.
func (a *Animator) Clip(trigger string) (Clip, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	c, ok := a.clips[trigger]
	if !ok {
		return Clip{}, fmt.Errorf("%w: %s", ErrUnknownTrigger, trigger)
	}
	return c, nil
}

// Triggers returns the registered trigger names, sorted.
func (a *Animator) Triggers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Sorted(maps.Keys(a.clips))
}

// SetBool sets a bool parameter. The callback only fires when the value
// changes.
func (a *Animator) SetBool(name string, value bool) {
	a.mu.Lock()
	old, seen := a.bools[name]
	a.bools[name] = value
	cb := a.onChange
	a.mu.Unlock()

	if cb != nil && (!seen || old != value) {
		cb(Change{Kind: ChangeBool, Name: name, Value: value})
	}
}

// Bool returns a bool parameter. Unset parameters are false.
func (a *Animator) Bool(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bools[name]
}

// SetTrigger starts the clip registered for name, replacing any clip in
// progress.
func (a *Animator) SetTrigger(name string) (Clip, error) {
	a.mu.Lock()
	c, ok := a.clips[name]
	if !ok {
		a.mu.Unlock()
		return Clip{}, fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	a.current = name
	a.remaining = c.Duration
	cb := a.onChange
	a.mu.Unlock()

	if cb != nil {
		cb(Change{Kind: ChangeTrigger, Name: name})
	}
	return c, nil
}

// Update advances the playing clip by dt seconds.
func (a *Animator) Update(dt float64) {
	if dt <= 0 {
		return
	}

	a.mu.Lock()
	if a.current == "" {
		a.mu.Unlock()
		return
	}
	a.remaining -= dt
	if a.remaining > 0 {
		a.mu.Unlock()
		return
	}
	ended := a.current
	a.current = ""
	a.remaining = 0
	cb := a.onChange
	a.mu.Unlock()

	if cb != nil {
		cb(Change{Kind: ChangeClipEnded, Name: ended})
	}
}

// IsPlaying reports whether the clip for trigger is playing.
func (a *Animator) IsPlaying(trigger string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current != "" && a.current == trigger
}

// Current returns the trigger of the playing clip, or "".
func (a *Animator) Current() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// State returns a snapshot of all parameters.
func (a *Animator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return State{
		Bools:     maps.Clone(a.bools),
		Clip:      a.current,
		Remaining: a.remaining,
	}
}

var _ nav.AnimationSink = (*Animator)(nil)
