package service

import "errors"

// Failure modes shared across the service layer. Controllers map these
// to HTTP status codes with errors.Is and never leak internal detail to
// the caller.
var (
	// Token validation.
	ErrInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")

	// Credentials and accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")

	// Status store.
	ErrNoStatus         = errors.New("no status recorded")
	ErrMalformedPayload = errors.New("malformed device payload")
)
