// Package errors provides structured error types for bldr.
//
// Every failure that crosses a package boundary carries a [Code] so the CLI
// can map it to an exit status and callers can branch on the failure class
// without string matching.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (coordinates, paths, descriptors)
//   - MALFORMED_VERSION: a version string that does not start with a digit
//   - ARTIFACT_FETCH: an artifact could not be downloaded, fallbacks included
//   - MISSING_DIRECTORY: a required project directory does not exist
//   - COMPILATION: the compiler reported error-severity diagnostics
//   - EXTERNAL_TOOL: an external tool exited with a non-zero status
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedVersion, "invalid version %q", s)
//	if errors.Is(err, errors.ErrCodeMalformedVersion) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeArtifactFetch, origErr, "download %s", coord)
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
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidDescriptor Code = "INVALID_DESCRIPTOR"
	ErrCodeMalformedVersion  Code = "MALFORMED_VERSION"

	// Resource errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeArtifactFetch    Code = "ARTIFACT_FETCH"
	ErrCodeMissingDirectory Code = "MISSING_DIRECTORY"

	// Build errors
	ErrCodeCompilation  Code = "COMPILATION"
	ErrCodeExternalTool Code = "EXTERNAL_TOOL"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether any *Error in err's chain has the given code,
// including every branch of a joined error.
func Is(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				if Is(inner, code) {
					return true
				}
			}
			return false
		}
		err = errors.Unwrap(err)
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

// ExitError carries the exit status of an external process.
type ExitError struct {
	Tool     string
	ExitCode int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
}

// Code returns the error code for this error type.
func (e *ExitError) Code() Code {
	return ErrCodeExternalTool
}

// Join wraps errs like the standard library's errors.Join. [Is] searches
// every joined branch.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
