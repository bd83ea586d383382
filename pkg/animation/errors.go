package animation

import "errors"

var (
	// ErrUnknownTrigger is returned when a trigger has no registered clip.
	ErrUnknownTrigger = errors.New("animation: unknown trigger")

	// ErrInvalidClip is returned when a clip table entry is malformed.
	ErrInvalidClip = errors.New("animation: invalid clip data")
)
