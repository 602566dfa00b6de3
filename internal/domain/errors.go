package domain

import "errors"

// Error taxonomy. Callers match with errors.Is.
var (
	// ErrInvalidTimestamp marks a malformed or unusable instant.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrCoordinateOutOfRange marks a latitude outside [-90, 90] or a
	// longitude outside [-180, 180].
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")

	// ErrEphemerisUnavailable marks a failure of the underlying ephemeris.
	ErrEphemerisUnavailable = errors.New("ephemeris unavailable")

	// ErrUnknownBody marks an unsupported body identifier.
	ErrUnknownBody = errors.New("unknown body")

	// ErrBoundaryNonConvergent marks a bisection that hit its iteration cap.
	// FindTransitions absorbs it; only Bisect returns it.
	ErrBoundaryNonConvergent = errors.New("boundary search did not converge")
)
