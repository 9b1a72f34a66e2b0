package scene

import "errors"

// Domain errors for the scene package, checked with errors.Is.
var (
	// ErrNotFound is returned when a scene does not exist for the caller.
	// Covers both truly absent scenes and scenes owned by another user.
	ErrNotFound = errors.New("scene: not found")

	// ErrDeviceNotFound is returned when a binding references a device the
	// caller does not own. Raised during composition, before any write.
	ErrDeviceNotFound = errors.New("scene: bound device not found")

	// ErrInvalidName is returned when a scene name fails validation.
	ErrInvalidName = errors.New("scene: invalid name")

	// ErrInvalidBinding is returned when a binding fails field validation.
	ErrInvalidBinding = errors.New("scene: invalid binding")

	// ErrUnknownTemplate is returned when a preset name has no template.
	ErrUnknownTemplate = errors.New("scene: unknown template")

	// ErrNotImplemented is returned by scheduling, which is deliberately
	// unimplemented.
	ErrNotImplemented = errors.New("scene: scheduling not implemented")
)
