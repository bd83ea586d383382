// Package animation tracks animator parameters for a dog: bool parameters
// such as isWalking, and one-shot trigger clips such as Sit or Hand.
package animation

// Trigger names used by the dog animator.
const (
	TriggerHand = "Hand"
	TriggerSit  = "Sit"
	TriggerDown = "Down"
)

// Clip describes a one-shot animation started by a trigger.
type Clip struct {
	Name        string  `yaml:"name" json:"name"`
	Trigger     string  `yaml:"trigger" json:"trigger"`
	Description string  `yaml:"description" json:"description"`
	Duration    float64 `yaml:"duration" json:"duration"` // Clip length in seconds
	Hold        float64 `yaml:"hold" json:"hold"`         // Seconds wandering stays paused
}

// clipFile is the on-disk clip table.
type clipFile struct {
	Clips []Clip `yaml:"clips"`
}

// ChangeKind identifies what changed on the animator.
type ChangeKind int

const (
	// ChangeBool means a bool parameter flipped.
	ChangeBool ChangeKind = iota

	// ChangeTrigger means a trigger clip started.
	ChangeTrigger

	// ChangeClipEnded means the playing clip finished.
	ChangeClipEnded
)

// String returns the string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeBool:
		return "bool"
	case ChangeTrigger:
		return "trigger"
	case ChangeClipEnded:
		return "clip_ended"
	default:
		return "unknown"
	}
}

// Change is delivered to the change callback.
type Change struct {
	Kind  ChangeKind
	Name  string // Parameter or trigger name
	Value bool   // New value for ChangeBool
}

// ChangeFunc is called after a parameter changes.
type ChangeFunc func(Change)

// State is a snapshot of the animator.
type State struct {
	Bools     map[string]bool `json:"bools"`
	Clip      string          `json:"clip,omitempty"` // Trigger of the playing clip
	Remaining float64         `json:"remaining,omitempty"`
}
