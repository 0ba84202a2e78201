package errors

import (
	"errors"
	"fmt"
)

// Common error types for the enrollment client
var (
	// Session errors
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidLoginResponse = errors.New("invalid login response")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Storage errors
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedStorage = errors.New("unsupported storage driver")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnsupported    = errors.New("unsupported operation")
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
