package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a business failure so controllers can map it to an HTTP
// status and clients can decide whether a retry makes sense.
type Code string

const (
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
	CodeBusy     Code = "BUSY"
	CodeInternal Code = "INTERNAL"
)

// Error is the typed error returned by all services. Busy is the only
// retryable code; everything else is final from the caller's perspective.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func Busy(message string) *Error {
	return &Error{Code: CodeBusy, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// untyped errors (storage failures, programming errors).
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf returns the user-facing message, hiding internal details for
// untyped errors.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}

// IsRetryable reports whether the caller should retry with backoff.
func IsRetryable(err error) bool {
	return CodeOf(err) == CodeBusy
}

// HTTPStatus maps an error code to its HTTP response status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeBusy:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
