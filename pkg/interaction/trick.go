// Package interaction dispatches trick requests from buttons, clicks and
// voice commands to a dog's animator and navigation.
package interaction

import (
	"strings"

	"github.com/togedaeng/go-togedaeng/pkg/animation"
	"github.com/togedaeng/go-togedaeng/pkg/voice"
)

// Trick is a one-shot action the dog performs on request.
type Trick int

const (
	TrickHand Trick = iota
	TrickSit
	TrickDown
)

// Tricks lists every trick in display order.
var Tricks = []Trick{TrickHand, TrickSit, TrickDown}

// String returns the string representation of the trick.
func (t Trick) String() string {
	switch t {
	case TrickHand:
		return "hand"
	case TrickSit:
		return "sit"
	case TrickDown:
		return "down"
	default:
		return "unknown"
	}
}

// Trigger returns the animator trigger for the trick.
func (t Trick) Trigger() string {
	switch t {
	case TrickHand:
		return animation.TriggerHand
	case TrickSit:
		return animation.TriggerSit
	case TrickDown:
		return animation.TriggerDown
	default:
		return ""
	}
}

// ParseTrick accepts trick names, button labels and voice commands.
func ParseTrick(s string) (Trick, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hand", "paw":
		return TrickHand, nil
	case "sit":
		return TrickSit, nil
	case "down", "lie down", "liedown", "lie_down":
		return TrickDown, nil
	}
	if cmd, ok := voice.ParseCommand(s); ok {
		return FromCommand(cmd)
	}
	return 0, &UnknownTrickError{Name: s}
}

// FromCommand maps a voice command to its trick.
func FromCommand(cmd voice.Command) (Trick, error) {
	switch cmd {
	case voice.CommandHand:
		return TrickHand, nil
	case voice.CommandSit:
		return TrickSit, nil
	case voice.CommandDown:
		return TrickDown, nil
	}
	return 0, &UnknownTrickError{Name: string(cmd)}
}
