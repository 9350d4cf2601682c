// Package apperror defines the error kinds shared by the service and
// handler layers.
//
// The service layer returns *AppError values that wrap one of the sentinel
// errors below. Handlers use errors.Is to pick a status code and show
// AppError.Message to the user. Anything that is not an *AppError is treated
// as an internal failure and its text is never shown.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New returns an AppError of the given kind with a caller-chosen message.
// Use it when the message is user-facing text that must stay verbatim.
func New(kind error, message string) *AppError {
	return &AppError{
		Err:     kind,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized returns an AppError for requests that need a signed-in user.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Internal wraps an unexpected failure. The cause is kept for logging via
// Unwrap-chains (errors.Is(err, cause) still works), but Message stays generic.
func Internal(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
		Message: "An internal error occurred",
	}
}
