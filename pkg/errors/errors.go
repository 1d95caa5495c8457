// Package errors provides structured error types for graphimg.
//
// Every failure surfaced by the generation pipeline carries one of a small set
// of codes, so callers can tell bad input apart from storage trouble and from
// a corrupt intermediate artifact:
//   - INVALID_ARGUMENT: bad vertex/edge counts or a request that cannot terminate
//   - IO_ERROR: an artifact cannot be created, opened, read or written
//   - PARSE_ERROR: a malformed token or record in a persisted artifact
//   - INTERNAL_ERROR: a broken invariant inside graphimg itself
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "vertex count must be positive")
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "create %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure categories of the pipeline.
const (
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeIO              Code = "IO_ERROR"
	ErrCodeParse           Code = "PARSE_ERROR"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
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

// TokenError locates a malformed token inside a text artifact.
// Index is the zero-based token ordinal; Row and Column are one-based.
type TokenError struct {
	Index  int64
	Row    int64
	Column int64
	Token  string
	Reason string
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	return fmt.Sprintf("token %d (row %d, column %d) %q: %s", e.Index, e.Row, e.Column, e.Token, e.Reason)
}

// ParseError wraps a TokenError as a PARSE_ERROR for the named artifact.
func ParseError(artifact string, tok *TokenError) *Error {
	return Wrap(ErrCodeParse, tok, "malformed %s", artifact)
}
