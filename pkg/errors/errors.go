// Package errors provides structured error types for the hofstadter toolkit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three families:
//   - configuration: rejected before any matrix work starts
//     (UNSUPPORTED_LATTICE, UNSUPPORTED_BASIS, NO_HOPPING, INVALID_FLUX, INVALID_INPUT)
//   - capability: a valid request the engine does not implement
//     (NOT_IMPLEMENTED, INVALID_ARGUMENT)
//   - infrastructure: cache, catalog and bundle storage
//     (NOT_FOUND, NETWORK_ERROR, INTERNAL_ERROR)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedLattice, "lattice %q is not wired", name)
//	if errors.Is(err, errors.ErrCodeUnsupportedLattice) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNotFound, origErr, "load bundle %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidFlux        Code = "INVALID_FLUX"
	ErrCodeNoHopping          Code = "NO_HOPPING"
	ErrCodeUnsupportedLattice Code = "UNSUPPORTED_LATTICE"
	ErrCodeUnsupportedBasis   Code = "UNSUPPORTED_BASIS"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"

	// Capability errors
	ErrCodeNotImplemented  Code = "NOT_IMPLEMENTED"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Infrastructure errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
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

// IsConfiguration reports whether err is one of the configuration codes,
// i.e. a request that was rejected before any computation started.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFlux, ErrCodeNoHopping,
		ErrCodeUnsupportedLattice, ErrCodeUnsupportedBasis, ErrCodeInvalidFormat:
		return true
	}
	return false
}
