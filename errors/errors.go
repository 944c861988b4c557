package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// ConnectFailed reports that no connection to a provider of the named service
// became available. This is the error returned when a bootstrap wait for
// availability times out.
func ConnectFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectFailed, Message: fmt.Sprintf("no available connection for service %q", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a call that timed out.
func Timeout(service, method string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("call %s.%s timed out", service, method),
		Retryable: true,
		Details:   map[string]any{"service": service, "method": method},
	}
}

// NoProviders creates a new AppError for a call with no provider addresses.
func NoProviders(service string) *AppError {
	return &AppError{
		Code: ErrCodeNoProviders, Message: fmt.Sprintf("no provider addresses registered for service %q", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// UnknownMethod creates a new AppError for a call to an undeclared method.
func UnknownMethod(service, method string) *AppError {
	return &AppError{
		Code: ErrCodeUnknownMethod, Message: fmt.Sprintf("method %q is not declared on service %q", method, service),
		Retryable: false,
		Details:   map[string]any{"service": service, "method": method},
	}
}

// InvalidConfig creates a new AppError for invalid consumer configuration.
func InvalidConfig(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: message,
		Retryable: false,
	}
}

// Internal creates a new AppError for an unexpected internal failure.
func Internal(message string) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: message,
		Retryable: false,
	}
}

// --- Inspection helpers ---

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsConnectFailed reports whether err is a connect-failed error.
func IsConnectFailed(err error) bool {
	return IsCode(err, ErrCodeConnectFailed)
}

// IsRetryable reports whether err is marked retryable.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}
