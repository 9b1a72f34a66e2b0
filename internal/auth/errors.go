package auth

import "errors"

// Domain errors for the auth package, checked with errors.Is.
var (
	// ErrUserNotFound is returned when a user ID or username does not exist.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrUsernameExists is returned when registering a username that is taken.
	ErrUsernameExists = errors.New("auth: username already exists")

	// ErrInvalidCredentials is returned when a login attempt fails.
	// Deliberately covers both unknown username and wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidUsername is returned when a username fails format validation.
	ErrInvalidUsername = errors.New("auth: invalid username")

	// ErrInvalidPassword is returned when a password fails validation.
	ErrInvalidPassword = errors.New("auth: invalid password")

	// ErrTokenInvalid is returned when an access token fails validation.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrNotOwner is returned when a caller attempts to access a resource
	// owned by another user.
	ErrNotOwner = errors.New("auth: caller does not own resource")
)
