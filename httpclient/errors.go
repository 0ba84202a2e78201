package httpclient

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-enrollment-client/internal/errors"
)

// Error is implemented only by the error types in this package:
// *NetworkError, *HTTPError, *DecodeError and *AuthError.
type Error interface {
	error
	clientError()
}

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
func (*NetworkError) clientError()    {}

// HTTPError is a response with a non-2xx status.
type HTTPError struct {
	Status  int
	Message string // Backend supplied message, if any
	Body    []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
}

func (*HTTPError) clientError() {}

// DecodeError is a successful response whose body could not be decoded.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
func (*DecodeError) clientError()    {}

var (
	_ Error = (*NetworkError)(nil)
	_ Error = (*HTTPError)(nil)
	_ Error = (*DecodeError)(nil)
)

// StatusCode returns the HTTP status carried by err, if it is (or wraps) an *HTTPError.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	status, ok := StatusCode(err)
	return ok && status == http.StatusUnauthorized
}

// AuthError means a 401 could not be recovered because the session refresh
// failed. Err is the refresher's error.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("session refresh failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }
func (*AuthError) clientError()    {}

var _ Error = (*AuthError)(nil)
