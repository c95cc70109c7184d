// Package errors provides structured error types for Polagram.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - PARSE_ERROR, UNSUPPORTED_CONSTRUCT: diagram source problems
//   - SELECTOR_ERROR: bad match patterns in a lens
//   - INTERNAL_*: Unexpected internal errors
//
// # Typed Errors
//
// Three error kinds carry extra structure and are matched with errors.As:
// [ParseError] (line/column of malformed input), [SelectorError] (invalid
// pattern in a selector) and [UnsupportedConstructError] (syntax that is
// recognized but has no faithful AST representation). Each exposes a Code
// method so [GetCode] and [Is] work on them too.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLens, "lens %q has no name", name)
//	if errors.Is(err, errors.ErrCodeInvalidLens) {
//	    // Handle validation error
//	}
//
//	var perr *errors.ParseError
//	if stderrors.As(err, &perr) {
//	    fmt.Println(perr.Line, perr.Column)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidLens     Code = "INVALID_LENS"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"

	// Diagram source errors
	ErrCodeParse       Code = "PARSE_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED_CONSTRUCT"
	ErrCodeSelector    Code = "SELECTOR_ERROR"

	// Resource errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
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

// coded is implemented by every error type in this package.
type coded interface {
	error
	ErrorCode() Code
}

// ErrorCode returns the error code.
func (e *Error) ErrorCode() Code { return e.Code }

// Is reports whether err has the given error code.
// It unwraps the error chain looking for a coded error with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
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
