package api

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when a protected call is attempted
// without a stored bearer token.
var ErrMissingCredential = errors.New("missing credential, log in first")

// Error is a non-success response from the approval server. Message
// carries the server's message field verbatim when one was sent; the
// UI surfaces it unchanged so the server stays the single source of
// denial reasons.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// IsServerError reports whether err is a server-side rejection and, if
// so, returns it.
func IsServerError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
