// Package apperr defines the typed error taxonomy used across tool dispatch.
// Every error carries a stable code and an HTTP-equivalent status number.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Stable error codes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimit    = "RATE_LIMIT_EXCEEDED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeExport       = "EXPORT_ERROR"
	CodeTimeout      = "TIMEOUT_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnknownTool  = "UNKNOWN_OPERATION"
	CodeDuplicate    = "DUPLICATE_OPERATION"
)

// statusByCode maps stable codes to HTTP-equivalent status numbers.
var statusByCode = map[string]int{
	CodeValidation:   http.StatusBadRequest,
	CodeNotFound:     http.StatusNotFound,
	CodeRateLimit:    http.StatusTooManyRequests,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
	CodeExport:       http.StatusInternalServerError,
	CodeTimeout:      http.StatusRequestTimeout,
	CodeInternal:     http.StatusInternalServerError,
	CodeUnknownTool:  http.StatusNotFound,
	CodeDuplicate:    http.StatusConflict,
}

// StatusFor returns the HTTP status for a code, defaulting to 500.
func StatusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a classified failure with a stable code and diagnostic context.
// Context is retained for local logging only and never serialized to callers.
type Error struct {
	Context   map[string]any
	cause     error
	Message   string
	Code      string
	Status    int
	Timestamp time.Time
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates an Error with the given code. The status is derived from the code.
func New(code, message string) *Error {
	return &Error{
		Message:   message,
		Code:      code,
		Status:    StatusFor(code),
		Context:   map[string]any{},
		Timestamp: time.Now().UTC(),
	}
}

// With attaches a context key/value pair and returns the error.
func (e *Error) With(key string, value any) *Error {
	e.Context[key] = value
	return e
}

// Validation reports bad input shape. Details lists every violated constraint.
func Validation(message string, details []string) *Error {
	return New(CodeValidation, message).With("details", details)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(resource, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", resource, id)).
		With("resource", resource).
		With("id", id)
}

// RateLimited reports a caller over budget, with seconds until the window resets.
func RateLimited(resetSeconds int) *Error {
	return New(CodeRateLimit, "Rate limit exceeded. Please try again later.").
		With("resetTime", resetSeconds)
}

// UnknownTool reports a dispatch to an unregistered operation name.
func UnknownTool(name string) *Error {
	return New(CodeUnknownTool, "Unknown tool: "+name).With("tool", name)
}

// Export reports a formatter failure for the requested format.
func Export(format string, cause error) *Error {
	e := New(CodeExport, fmt.Sprintf("export to %s failed", format)).
		With("format", format)
	e.cause = cause
	if cause != nil {
		e.Context["reason"] = cause.Error()
	}
	return e
}

// Timeout reports a handler that exceeded its execution deadline.
func Timeout(operation string) *Error {
	return New(CodeTimeout, "operation timed out").With("operation", operation)
}

// Internal wraps an unexpected failure. The cause is kept for local
// diagnostics; the caller-visible message never leaks it.
func Internal(cause error) *Error {
	e := New(CodeInternal, "An unexpected error occurred")
	e.cause = cause
	if cause != nil {
		e.Context["cause"] = cause.Error()
	}
	return e
}

// Normalize classifies an arbitrary error into the taxonomy. Typed errors
// pass through unchanged; anything else becomes an INTERNAL_ERROR.
func Normalize(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
