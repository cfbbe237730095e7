// Package errors provides coded errors for impred.
//
// Every error that crosses a package boundary carries a [Code]. The CLI
// prints [UserMessage], the HTTP server maps codes to status codes, and
// geometry callers branch on the two geometric kinds:
//
//   - INVALID_ARGUMENT: the input is malformed, for example two coincident
//     points defining a line. Not recoverable by the caller.
//   - DEGENERATE_GEOMETRY: the input is valid but has no unique answer, for
//     example parallel segments. Callers holding a random probe retry.
//
// Codes starting with INVALID_ and DEGENERATE_GEOMETRY blame the caller's
// input; see [Code.Input].
//
//	if errors.IsDegenerate(err) {
//	    // re-roll the probe
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a machine-readable error kind.
type Code string

const (
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidGraph    Code = "INVALID_GRAPH"

	ErrCodeDegenerateGeometry Code = "DEGENERATE_GEOMETRY"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Input reports whether c blames the caller's input rather than the system.
func (c Code) Input() bool {
	return strings.HasPrefix(string(c), "INVALID_") || c == ErrCodeDegenerateGeometry
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Invalid returns an INVALID_ARGUMENT error.
func Invalid(format string, args ...any) *Error {
	return New(ErrCodeInvalidArgument, format, args...)
}

// Degenerate returns a DEGENERATE_GEOMETRY error.
func Degenerate(format string, args ...any) *Error {
	return New(ErrCodeDegenerateGeometry, format, args...)
}

// coded returns the outermost *Error in err's chain.
func coded(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := coded(err)
	return ok && e.Code == code
}

// IsDegenerate reports whether err is a DEGENERATE_GEOMETRY error.
func IsDegenerate(err error) bool { return Is(err, ErrCodeDegenerateGeometry) }

// GetCode returns the code of the outermost coded error, or "".
func GetCode(err error) Code {
	if e, ok := coded(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code, or
// err's text for other errors.
func UserMessage(err error) string {
	if e, ok := coded(err); ok {
		return e.Message
	}
	return err.Error()
}
