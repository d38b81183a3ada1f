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

// Common application errors. Only the first three terminate a pipeline
// run; oracle-layer faults are absorbed into soft result states.
var (
	ErrUnreadableContent     = errors.New("content could not be read")
	ErrCapabilityUnavailable = errors.New("required capability unavailable")
	ErrApplicationFailure    = errors.New("redaction could not be applied")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrInvalidInput          = errors.New("invalid input")
)

// NewAppError constructs an AppError.
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
