package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers transport failures and 5xx answers.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is returned for 401/403 answers.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRejected is returned for any other non-2xx answer.
	ErrRejected = errors.New("request rejected")
	// ErrBadResponse means the body could not be decoded.
	ErrBadResponse = errors.New("bad response")
)

// StatusError describes a non-2xx answer. It unwraps to one of the
// sentinels above so callers can use errors.Is.
type StatusError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.kind, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}
