package gameservice

import "errors"

var (
	// ErrNotEnded is returned when resolving an instance whose active window is still open.
	ErrNotEnded = errors.New("instance has not ended yet")

	// ErrInvalidDate is returned for malformed instance dates.
	ErrInvalidDate = errors.New("invalid instance date, expected YYYY-MM-DD")

	// ErrInvalidWindow is returned for negative stats windows.
	ErrInvalidWindow = errors.New("window days must not be negative")

	// ErrInvalidTier is returned when a role operation names no role tier.
	ErrInvalidTier = errors.New("tier must be sergeant, commander or general")
)
