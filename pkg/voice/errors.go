package voice

import "errors"

var (
	// ErrRecordingTooShort is returned when a recording ends before the minimum duration.
	ErrRecordingTooShort = errors.New("voice: recording too short")

	// ErrNotRecording is returned when stopping a recorder that is idle.
	ErrNotRecording = errors.New("voice: not recording")

	// ErrBusy is returned when a transcript is still being processed.
	ErrBusy = errors.New("voice: still processing")

	// ErrUnknownCommand is returned when a transcript has no command word.
	ErrUnknownCommand = errors.New("voice: unknown command")
)
