package nav

import "errors"

var (
	// ErrNoNavigablePoint is returned when sampling exhausts its retries.
	ErrNoNavigablePoint = errors.New("nav: no navigable point found")

	// ErrDestinationRejected is returned when the navigator refuses a sampled destination.
	ErrDestinationRejected = errors.New("nav: destination rejected by navigator")

	// ErrNilNavigator is returned when the controller is built without a provider.
	ErrNilNavigator = errors.New("nav: navigator required")

	// ErrNilSurface is returned when the controller is built without a surface sampler.
	ErrNilSurface = errors.New("nav: surface sampler required")
)
