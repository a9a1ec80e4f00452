package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("api server unavailable")

	// ErrTimeout indicates a request exceeded the configured timeout.
	ErrTimeout = errors.New("api request timed out")

	// ErrEnvelope indicates the backend answered with success=false.
	ErrEnvelope = errors.New("api request unsuccessful")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api returned status %d", e.Code)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Code, e.Body)
}
