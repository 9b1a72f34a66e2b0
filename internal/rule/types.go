// Package rule stores automation rules. Rules are persisted and listed
// for the dashboard but there is no evaluation engine: conditions are
// opaque text and nothing in the core fires them.
package rule

import "time"

// Rule is a stored automation rule owned by a single user.
type Rule struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	DeviceID  string    `json:"device_id"`
	Condition string    `json:"condition"`
	Action    string    `json:"action"`
	IsEnabled bool      `json:"is_enabled"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// maxNameLength is the maximum allowed rule name length.
const maxNameLength = 100

// IsValidName checks if a rule name is non-empty and within length limits.
func IsValidName(name string) bool {
	return name != "" && len(name) <= maxNameLength
}
