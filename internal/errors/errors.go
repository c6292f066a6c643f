package errors

import (
	"errors"
	"fmt"
)

// AppError is the structured error type for assetsearch.
// It provides context for error handling, logging, and operator presentation.
type AppError struct {
	// Code is the unique error code (e.g., "ERR_202_INDEX_LOCKED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an AppError from an existing error.
// The error's message becomes the AppError message.
func Wrap(code string, err error) *AppError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// IndexLockError creates a write-lock contention error.
func IndexLockError(message string, cause error) *AppError {
	return New(ErrCodeIndexLocked, message, cause)
}

// IndexWriteError creates an index mutation error.
func IndexWriteError(message string, cause error) *AppError {
	return New(ErrCodeIndexWrite, message, cause)
}

// QueryError creates a malformed-query error.
func QueryError(message string, cause error) *AppError {
	return New(ErrCodeInvalidQuery, message, cause)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *AppError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// CodeOf returns the error code if err is (or wraps) an AppError,
// or ErrCodeInternal otherwise.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsLockError reports whether err is (or wraps) a write-lock contention error.
func IsLockError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrCodeIndexLocked
	}
	return false
}
