package device

import "errors"

// Domain errors for the device package, checked with errors.Is.
var (
	// ErrNotFound is returned when a device does not exist for the caller.
	// Covers both truly absent devices and devices owned by another user.
	ErrNotFound = errors.New("device: not found")

	// ErrInvalidName is returned when a device name fails validation.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidType is returned when a device type is not in the known set.
	ErrInvalidType = errors.New("device: invalid type")

	// ErrInvalidStatus is returned when a status value fails validation.
	ErrInvalidStatus = errors.New("device: invalid status")

	// ErrConflict is returned when a conditional status update loses a race.
	ErrConflict = errors.New("device: concurrent modification")
)
