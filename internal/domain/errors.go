package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable signals a transport-level failure reaching the catalog backend.
	ErrUnavailable = errors.New("catalog backend unavailable")
	// ErrTimeout signals client-side abandonment after the timeout budget expired.
	ErrTimeout = errors.New("request timed out")
	// ErrMalformedResponse signals an undecodable backend response body.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrSessionNotFound signals a missing or expired search session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed signals an operation on a closed search session.
	ErrSessionClosed = errors.New("session closed")
	// ErrUnknownFacet signals a refine call on a facet the catalog does not expose.
	ErrUnknownFacet = errors.New("unknown facet")
)

// HTTPError wraps a non-success backend response with its status and
// the server-supplied message, when one was decodable.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}
