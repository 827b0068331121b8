package domain

import "errors"

// Sentinel errors shared across services. Services return these (possibly
// wrapped with %w) so the delivery layer can map them to HTTP statuses.
var (
	// ErrUnauthenticated means no caller identity was supplied where one
	// is required. Maps to 401.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden means the caller is identified but its role is not
	// sufficient for the operation. Maps to 403.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced record does not exist. Maps to 404.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a required field is missing or malformed. Maps to 400.
	ErrInvalidInput = errors.New("invalid input")
)
