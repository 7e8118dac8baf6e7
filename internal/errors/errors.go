package errors

import (
	"errors"
	"fmt"
)

// Common error types for the marketplace client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("weak password")

	// Session errors
	ErrNoSession       = errors.New("no active session")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionMismatch = errors.New("session belongs to a different principal")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrNoIDToken    = errors.New("no id_token in token response")

	// Client-side errors
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden for role")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New returns an error with the given text
func New(text string) error {
	return errors.New(text)
}
