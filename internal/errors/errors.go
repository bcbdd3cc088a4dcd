package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a passgen error code.
type ErrorCode string

const (
	ErrInvalidOptions ErrorCode = "INVALID_OPTIONS"   // 400
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"         // 404
	ErrPersistence    ErrorCode = "PERSISTENCE_ERROR" // 500
	ErrInternal       ErrorCode = "INTERNAL"          // 500
)

// PassgenError represents a structured error with code, status, and details.
type PassgenError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *PassgenError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PassgenError) Unwrap() error {
	return e.Err
}

// NewInvalidOptions creates a 400 error for generation options that leave
// nothing to draw from.
func NewInvalidOptions(msg string) *PassgenError {
	return &PassgenError{
		Code:    ErrInvalidOptions,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *PassgenError {
	return &PassgenError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *PassgenError {
	return &PassgenError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewPersistence creates a 500 error for a failed write of the saved list.
func NewPersistence(err error) *PassgenError {
	msg := "failed to save passwords"
	if err != nil {
		msg = fmt.Sprintf("failed to save passwords: %v", err)
	}
	return &PassgenError{
		Code:    ErrPersistence,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *PassgenError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PassgenError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if err, or anything it wraps, is a PassgenError with the given code.
func Is(err error, code ErrorCode) bool {
	var pErr *PassgenError
	if stderrors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}
