package rule

import "errors"

// Domain errors for the rule package, checked with errors.Is.
var (
	// ErrNotFound is returned when a rule does not exist for the caller.
	ErrNotFound = errors.New("rule: not found")

	// ErrInvalidName is returned when a rule name fails validation.
	ErrInvalidName = errors.New("rule: invalid name")
)
