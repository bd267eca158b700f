// Package errors provides structured error types for circlepack.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, API and library callers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes mirror the stages of a packing run:
//   - INVALID_CONFIG: bad option values, unknown backend or strategy names
//   - INVALID_MODEL: degenerate domain or circle count
//   - GENERATION_FAILED: the initial-guess strategy could not produce n points
//   - INFEASIBLE, TIMEOUT, BACKEND_ERROR: statuses reported by the solving engine
//   - VALIDATION_FAILED: a converged answer that breaks the packing invariants
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "unknown backend %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeBackend, origErr, "run ampl")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors, raised before any external call.
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidModel  Code = "INVALID_MODEL"
	ErrCodeGeneration    Code = "GENERATION_FAILED"

	// Solver statuses.
	ErrCodeInfeasible Code = "INFEASIBLE"
	ErrCodeTimeout    Code = "TIMEOUT"
	ErrCodeBackend    Code = "BACKEND_ERROR"
	ErrCodeBusy       Code = "BUSY"

	// Post-solve checks.
	ErrCodeValidation Code = "VALIDATION_FAILED"

	// Lookup and internal errors.
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsSolverStatus reports whether err carries one of the engine statuses that
// are not fatal to the process: infeasible or timed out.
func IsSolverStatus(err error) bool {
	switch GetCode(err) {
	case ErrCodeInfeasible, ErrCodeTimeout:
		return true
	}
	return false
}

// As is errors.As from the standard library, re-exported so callers need
// only one errors import.
func As(err error, target any) bool { return errors.As(err, target) }

// Join is errors.Join from the standard library.
func Join(errs ...error) error { return errors.Join(errs...) }
