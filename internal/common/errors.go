package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
	ErrUnavailable  = errors.New("service unavailable")
	ErrTimeout      = errors.New("operation timed out")
)

// Stable error codes carried by AppError.
const (
	CodeConfig      = "CONFIG_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeInvalid     = "INVALID_INPUT"
	CodeConflict    = "CONFLICT"
	CodeDatabase    = "DATABASE_ERROR"
	CodeStorage     = "STORAGE_ERROR"
	CodeStructuring = "STRUCTURING_ERROR"
	CodeCompletion  = "COMPLETION_ERROR"
	CodeTimeout     = "TIMEOUT"
	CodeQueue       = "QUEUE_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// CodeOf extracts the AppError code from an error chain. Returns
// CodeInternal when the chain carries no AppError.
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}
