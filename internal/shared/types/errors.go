package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn is returned for workspace actions that require a session
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionClosed is returned when a session was discarded mid-operation
	ErrSessionClosed = errors.New("session closed")
)

// ValidationError reports an empty or invalid required field.
// It is raised before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError reports a request that never produced an HTTP response
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError reports a non-success HTTP status.
// Message is parsed from the body when possible.
type BackendError struct {
	Op      string
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Message)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNetwork reports whether err is a NetworkError
func IsNetwork(err error) bool {
	var n *NetworkError
	return errors.As(err, &n)
}

// IsBackend reports whether err is a BackendError
func IsBackend(err error) bool {
	var b *BackendError
	return errors.As(err, &b)
}
