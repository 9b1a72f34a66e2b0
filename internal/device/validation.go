package device

// maxNameLength is the maximum allowed device name length.
const maxNameLength = 100

// maxStatusLength bounds free-form status values.
const maxStatusLength = 64

// Validate checks a device's fields before persistence.
func Validate(d *Device) error {
	if d.Name == "" || len(d.Name) > maxNameLength {
		return ErrInvalidName
	}
	if !IsValidType(d.Type) {
		return ErrInvalidType
	}
	return nil
}

// IsValidStatus checks that a status value is non-empty and bounded.
// Status is deliberately free-form beyond that: scenes write arbitrary
// target states like "DIM" or numeric values.
func IsValidStatus(status string) bool {
	return status != "" && len(status) <= maxStatusLength
}
