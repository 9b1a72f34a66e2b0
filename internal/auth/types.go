package auth

import (
	"regexp"
	"time"
)

// User is an account. Everything owner-scoped (rooms, devices, scenes,
// automation rules) hangs off a user ID.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Usernames: 1-64 chars drawn from letters, digits, dot, hyphen and
// underscore. Passwords only have a length floor; composition rules are
// left to the user.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

const minPasswordLength = 8

// IsValidUsername reports whether username is acceptable at registration.
func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// IsValidPassword reports whether password meets the length floor.
func IsValidPassword(password string) bool {
	return len(password) >= minPasswordLength
}
