// Package room manages the physical spaces that devices are assigned to.
// Rooms are owner-scoped: every query filters by the owning user, so a
// caller can never observe or modify another user's rooms.
package room

import "time"

// Room represents a physical space belonging to a single user.
type Room struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Floor       int       `json:"floor"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// maxNameLength is the maximum allowed room name length.
const maxNameLength = 100

// IsValidName checks if a room name is non-empty and within length limits.
func IsValidName(name string) bool {
	return name != "" && len(name) <= maxNameLength
}
