// Package errors provides unified error handling for rpckit.
// It implements structured error types with machine-readable codes and
// retryable detection, tailored to the consumer-side RPC domain.
package errors
