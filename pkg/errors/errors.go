package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind categorizes failures the console can run into
type Kind string

const (
	// Transport failures
	KindNetwork Kind = "network"
	KindTimeout Kind = "timeout"

	// Session and permission failures
	KindAuth      Kind = "auth"
	KindForbidden Kind = "forbidden"

	// Server answers
	KindNotFound   Kind = "not_found"
	KindServer     Kind = "server"
	KindValidation Kind = "validation"

	// Rejected locally before any request was sent
	KindBusiness Kind = "business"

	KindUnknown Kind = "unknown"
)

// AppError represents a structured error with context
type AppError struct {
	Kind       Kind
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a helpful suggestion to the error
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *AppError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Is lets errors.Is match on Kind, e.g. errors.Is(err, &AppError{Kind: KindBusiness}).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// New creates a new error of the given kind
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(cause error) *AppError {
	err := New(KindNetwork, "Could not reach the server", cause)
	err.Suggestion = "Check your network connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *AppError {
	err := New(KindTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// SessionExpiredError creates an auth error for a missing or rejected token
func SessionExpiredError() *AppError {
	err := New(KindAuth, "Your session has expired", nil)
	err.StatusCode = http.StatusUnauthorized
	err.Suggestion = "Run 'staffdesk auth login' to sign in again."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "Access denied"
	}
	err := New(KindForbidden, message, nil)
	err.StatusCode = http.StatusForbidden
	err.Suggestion = "Contact an administrator if you believe this is an error."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resource string) *AppError {
	err := New(KindNotFound, fmt.Sprintf("%s not found", resource), nil)
	err.StatusCode = http.StatusNotFound
	return err
}

// ServerError creates a server error
func ServerError(status int, message string) *AppError {
	if message == "" {
		message = "Server error"
	}
	err := New(KindServer, message, nil)
	err.StatusCode = status
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// ValidationError creates a validation error
func ValidationError(status int, message string) *AppError {
	err := New(KindValidation, message, nil)
	err.StatusCode = status
	return err
}

// BusinessError creates an error for an action refused client-side
func BusinessError(message, suggestion string) *AppError {
	err := New(KindBusiness, message, nil)
	err.Suggestion = suggestion
	return err
}

// FromStatus maps a non-2xx HTTP status to an AppError carrying the server's message.
func FromStatus(status int, message string) *AppError {
	switch {
	case status == http.StatusUnauthorized:
		err := SessionExpiredError()
		if message != "" {
			err.Message = message
		}
		return err
	case status == http.StatusForbidden:
		return ForbiddenError(message)
	case status == http.StatusNotFound:
		err := NotFoundError("Resource")
		if message != "" {
			err.Message = message
		}
		return err
	case status >= 500:
		return ServerError(status, message)
	case status >= 400:
		if message == "" {
			message = http.StatusText(status)
		}
		return ValidationError(status, message)
	default:
		return New(KindUnknown, fmt.Sprintf("unexpected status %d", status), nil)
	}
}

// FromTransport classifies an error returned before any response was received.
func FromTransport(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutError(err)
	}
	if strings.Contains(err.Error(), "Client.Timeout exceeded") {
		return TimeoutError(err)
	}
	return NetworkError(err)
}

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}

// IsTransient reports whether a failure is load or connectivity related.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindServer:
		return true
	}
	return false
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = New(KindUnknown, err.Error(), err)
	}

	var sb strings.Builder
	sb.WriteString("Error")
	if appErr.Kind != KindUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(appErr.Kind))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(appErr.Message)
	sb.WriteString("\n")

	if appErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(appErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
