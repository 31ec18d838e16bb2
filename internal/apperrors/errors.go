package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is not allowed to act on the target organization's data.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the requested operation conflicts with the resource's current state.
var ErrConflict = errors.New("conflict with current state")

// ErrUnavailable indicates a transient storage failure; callers may retry with backoff.
var ErrUnavailable = errors.New("storage temporarily unavailable")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Code {
	case 404:
		return ErrNotFound
	case 400:
		return ErrValidation
	case 403:
		return ErrForbidden
	case 409:
		return ErrConflict
	case 503:
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// NewAppError wraps err with a status code and context message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError builds an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// NewUnavailableError marks a storage-layer outage as retryable by the caller.
func NewUnavailableError(message string, err error) *AppError {
	return &AppError{Code: 503, Message: message, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
}
