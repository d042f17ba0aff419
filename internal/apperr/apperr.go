// Package apperr defines the error kinds shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind sentinels. Match with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

// Error carries a client-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: ErrUnauthenticated, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Status maps an error to the HTTP status it should produce.
// Anything without a known kind is an internal error.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
