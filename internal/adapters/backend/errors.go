package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Category classifies a backend failure.
type Category string

const (
	// CategoryTransport covers network failures and timeouts.
	CategoryTransport Category = "transport"
	// CategoryStatus covers unexpected non-2xx responses.
	CategoryStatus Category = "status"
	// CategoryDecode covers bodies that are not the expected JSON.
	CategoryDecode Category = "decode"
	// CategoryAuth covers 401/403 responses and rejected credentials.
	CategoryAuth Category = "auth"
	// CategoryRejected covers 2xx responses carrying success=false.
	CategoryRejected Category = "rejected"
)

var (
	// ErrMissingToken is returned when an authenticated call gets an empty token.
	ErrMissingToken = errors.New("backend: bearer token required")
	// ErrProfileNotFound is returned when no profile row exists for an email.
	ErrProfileNotFound = errors.New("backend: profile not found")
)

// Error is a categorized backend failure.
type Error struct {
	Op       string
	Category Category
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("backend %s: %s (%d): %s", e.Op, e.Category, e.Status, msg)
	}
	return fmt.Sprintf("backend %s: %s: %s", e.Op, e.Category, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAuth reports whether err is an auth-category backend error.
func IsAuth(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Category == CategoryAuth
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

func statusError(op string, status int, body []byte) *Error {
	cat := CategoryStatus
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		cat = CategoryAuth
	}
	return &Error{Op: op, Category: cat, Status: status, Message: upstreamMessage(body)}
}
