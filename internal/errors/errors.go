package errors

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// InvalidStateError reports a violated structural invariant: re-parenting
// a tree item, inserting under a missing parent, binding a parser twice.
// These are not expected in normal operation.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: %s", e.Message)
}

// WebError is the payload carried across the parser boundary. Parsers
// never return errors from async operations; they report a WebError
// through the listener and the board forwards it verbatim to observers.
type WebError struct {
	Message string
	Details string
}

func (e *WebError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// StorageError carries the failing statement alongside the driver error
// so persistence failures are diagnosable from the log line alone.
type StorageError struct {
	Message string
	Query   string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}
