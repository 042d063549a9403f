package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("email is invalid")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("no_token_provided")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserNotFound       = errors.New("user not found")
)
