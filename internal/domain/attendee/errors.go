package attendee

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when every attempted lookup came back empty. It is a
// normal outcome, not a failure.
var ErrNotFound = errors.New("attendee not found")

// Validation messages.
const (
	MsgNoCriterion      = "at least one search criterion required"
	MsgTooManyCriteria  = "only one search criterion allowed"
	MsgNoUsableQRSignal = "no usable search criterion found in QR content"
)

// ValidationError reports a caller mistake detected before any backend call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BackendError wraps a transport or server failure from the lookup backend.
type BackendError struct {
	SearchType SearchType
	Err        error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("attendee lookup (%s): %v", e.SearchType, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsBackend reports whether err is a *BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
