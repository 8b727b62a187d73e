// Package errors provides structured error types for the genemap application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the figure builder
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: configuration and input validation failures
//   - MISSING_*: required data absent from a supplied file
//   - NOT_FOUND_*: resource not found
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingColumn, "%s does not contain column %s", path, col)
//	if errors.Is(err, errors.ErrCodeMissingColumn) {
//	    // Handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "failed to write %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors, detected before any data is touched
	ErrCodeInvalidArgument  Code = "INVALID_ARGUMENT"
	ErrCodeDuplicateElement Code = "DUPLICATE_ELEMENT"
	ErrCodeUnknownArgument  Code = "UNKNOWN_ARGUMENT"
	ErrCodeInvalidPhase     Code = "INVALID_PHASE"

	// Malformed or insufficient data in a supplied file
	ErrCodeMissingColumn  Code = "MISSING_COLUMN"
	ErrCodeNotNumeric     Code = "NOT_NUMERIC"
	ErrCodeTooFewMembers  Code = "TOO_FEW_MEMBERS"
	ErrCodeUnknownMember  Code = "UNKNOWN_MEMBER"
	ErrCodeEmptyFile      Code = "EMPTY_FILE"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeInvalidMatrix  Code = "INVALID_MATRIX"
	ErrCodeInvalidPanel   Code = "INVALID_PANEL"
	ErrCodeDuplicatePanel Code = "DUPLICATE_PANEL"

	// Store errors
	ErrCodeStore Code = "STORE_ERROR"

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
