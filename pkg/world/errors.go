package world

import "errors"

var (
	// ErrDogNotFound is returned when no dog has the given ID.
	ErrDogNotFound = errors.New("world: dog not found")

	// ErrWorldFull is returned when spawning beyond MaxDogs.
	ErrWorldFull = errors.New("world: no room for another dog")

	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("world: already running")
)
