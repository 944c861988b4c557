package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestConnectFailed(t *testing.T) {
	err := ConnectFailed("echo")

	if err.Code != ErrCodeConnectFailed {
		t.Errorf("expected CONNECT_FAILED, got %s", err.Code)
	}
	if !err.Retryable {
		t.Error("connect-failed should be retryable")
	}
	if err.Details["service"] != "echo" {
		t.Errorf("expected service detail, got %v", err.Details)
	}
	if !IsConnectFailed(err) {
		t.Error("IsConnectFailed should match")
	}
}

func TestIsConnectFailedThroughWrapping(t *testing.T) {
	err := fmt.Errorf("bootstrap: %w", ConnectFailed("echo"))
	if !IsConnectFailed(err) {
		t.Error("IsConnectFailed should see through wrapping")
	}
	if IsConnectFailed(stderrors.New("plain")) {
		t.Error("plain errors must not match")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := ConnectFailed("echo").WithCause(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find cause")
	}
	if got := err.Error(); got == "" {
		t.Error("expected non-empty error string")
	}
}

func TestRetryableClassification(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeConnectFailed, true},
		{ErrCodeTimeout, true},
		{ErrCodeNoProviders, true},
		{ErrCodeInvalidConfig, false},
		{ErrCodeUnknownMethod, false},
		{ErrCodeInternal, false},
	}

	for _, tt := range tests {
		if got := IsRetryableCode(tt.code); got != tt.want {
			t.Errorf("IsRetryableCode(%s) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestWithDetail(t *testing.T) {
	err := Internal("boom").WithDetail("phase", "build")
	if err.Details["phase"] != "build" {
		t.Errorf("detail not recorded: %v", err.Details)
	}
}

func TestNewUsesRetryableDetection(t *testing.T) {
	if !New(ErrCodeTimeout, "slow").Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if New(ErrCodeInvalidConfig, "bad").Retryable {
		t.Error("INVALID_CONFIG should not be retryable")
	}
}
