package discovery

import (
	"errors"
	"fmt"
)

// Code is a machine-readable discovery error code.
type Code string

const (
	// CodeNotFound means the root path or URL does not resolve at all.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidInput means the caller's arguments were unusable.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeForbidden means the root lies outside the permitted directory.
	CodeForbidden Code = "FORBIDDEN"
	// CodeTaskFailure means a background discovery could not run to completion.
	CodeTaskFailure Code = "TASK_FAILURE"
	// CodeCanceled means the caller's context ended the traversal early.
	CodeCanceled Code = "CANCELED"
)

// Error is a fatal discovery failure. Per-document fetch failures never
// surface as an Error; they only end that branch of the traversal.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf returns the code of a discovery error, or "" for any other error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given discovery error code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// TaskFailure reports a discovery task that panicked or was torn down.
func TaskFailure(recovered any) *Error {
	return newError(CodeTaskFailure, "discovery task failed: %v", recovered)
}

// Canceled reports a discovery that was stopped before it ran.
func Canceled(cause error) *Error {
	return wrapError(CodeCanceled, cause, "discovery canceled")
}

// Forbidden reports a discovery the caller is not permitted to run.
func Forbidden(format string, args ...any) *Error {
	return newError(CodeForbidden, format, args...)
}
