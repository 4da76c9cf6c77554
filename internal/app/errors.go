package service

import "errors"

var (
	// ErrUnauthorized means the caller's credentials or token were rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the caller is authenticated but not an admin.
	ErrForbidden = errors.New("admin role required")
	// ErrInvalidInput means a request argument failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCompanyNotFound means the requested company does not exist.
	ErrCompanyNotFound = errors.New("company not found")
)
