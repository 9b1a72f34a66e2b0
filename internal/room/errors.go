package room

import "errors"

// Domain errors for the room package, checked with errors.Is.
var (
	// ErrNotFound is returned when a room does not exist for the caller.
	// Covers both truly absent rooms and rooms owned by another user, so
	// callers cannot probe for the existence of other users' rooms.
	ErrNotFound = errors.New("room: not found")

	// ErrInvalidName is returned when a room name fails validation.
	ErrInvalidName = errors.New("room: invalid name")
)
