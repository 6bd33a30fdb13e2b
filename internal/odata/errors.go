package odata

import (
	"errors"
	"fmt"
)

// ErrMissingToken is returned when a call that needs caller credentials has none
var ErrMissingToken = errors.New("bearer token is required")

// BackendError is a non-success HTTP response from the backend
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// DecodeError is a backend response body that is not the expected JSON
type DecodeError struct {
	RawBody string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode backend response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
