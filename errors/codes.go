package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeConnectFailed indicates no provider connection became available.
	ErrCodeConnectFailed ErrorCode = "CONNECT_FAILED"
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeNoProviders indicates no provider addresses are registered.
	ErrCodeNoProviders ErrorCode = "NO_PROVIDERS"
	// ErrCodeTimeout indicates a call timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates consumer configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeUnknownMethod indicates a call named a method outside the service descriptor.
	ErrCodeUnknownMethod ErrorCode = "UNKNOWN_METHOD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectFailed:      true,
	ErrCodeServiceUnavailable: true,
	ErrCodeNoProviders:        true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
