package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrSessionExpired     = errors.New("session expired")
	ErrAlreadySignedIn    = errors.New("already signed in")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUpstream           = errors.New("upstream request failed")
)

// RemoteError is a non-2xx answer from the upstream API. Message carries the
// server-provided text so it can be shown to the user as is.
type RemoteError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream responded %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the matching sentinel so callers can use
// errors.Is without knowing about HTTP.
func (e *RemoteError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusBadRequest, e.StatusCode == http.StatusUnprocessableEntity,
		e.StatusCode == http.StatusConflict:
		return ErrInvalidInput
	default:
		return ErrUpstream
	}
}

// Temporary reports whether retrying the same request may succeed.
func (e *RemoteError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
