package interaction

import (
	"errors"
	"fmt"
)

// ErrUnknownTrick is matched by every UnknownTrickError.
var ErrUnknownTrick = errors.New("interaction: unknown trick")

// UnknownTrickError reports the name that could not be parsed.
type UnknownTrickError struct {
	Name string
}

func (e *UnknownTrickError) Error() string {
	return fmt.Sprintf("interaction: unknown trick %q", e.Name)
}

// Is lets errors.Is match ErrUnknownTrick.
func (e *UnknownTrickError) Is(target error) bool {
	return target == ErrUnknownTrick
}
