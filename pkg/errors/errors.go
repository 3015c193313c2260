// Package errors provides structured errors with machine-readable codes.
//
// Codes let the CLI and the HTTP API react to a failure class (invalid
// input, missing resource, backend down) without matching on message
// text. Codes follow a small hierarchy:
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: missing resources
//   - UNAVAILABLE/TIMEOUT: backend connectivity
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDiagram, "duplicate node id: %s", id)
//	if errors.Is(err, errors.ErrCodeInvalidDiagram) {
//	    // handle validation failure
//	}
//
//	err := errors.Wrap(errors.ErrCodeUnavailable, origErr, "redis cache at %s", addr)
//
// Note that the mutation store deliberately does not use this package: per its
// contract, operations on unknown ids are silent no-ops, not errors. Errors
// are reserved for the I/O boundaries (codec, cache, session, layout engines,
// HTTP).
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidDiagram Code = "INVALID_DIAGRAM"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidEngine  Code = "INVALID_ENGINE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidSession Code = "INVALID_SESSION"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNodeNotFound    Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Backend connectivity errors
	ErrCodeUnavailable Code = "UNAVAILABLE"
	ErrCodeTimeout     Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a code, a human-readable message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error renders "CODE: message" with the cause appended when present.
func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// Unwrap exposes the cause to the standard errors.Is/As chain walk.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code, message, and cause.
// A nil cause is allowed; the result then behaves like New.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	err := New(code, format, args...)
	err.Cause = cause
	return err
}

// Is reports whether err carries the given code, unwrapping as needed.
// When multiple coded errors are chained, the outermost code wins.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the code from err, or "" if no *Error is in the chain.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for display.
// Errors from outside this package are rendered with plain Error().
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
