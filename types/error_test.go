package types

import (
	"errors"
	"testing"
)

func TestErrorErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(ErrQueryError, "query failed").WithCause(cause)

	if got := err.Error(); got != "[QUERY_ERROR] query failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorErrorStringWithoutCause(t *testing.T) {
	err := NewError(ErrValidation, "bad input")
	if got := err.Error(); got != "[VALIDATION_ERROR] bad input" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorUnwrapReturnsCause(t *testing.T) {
	cause := errors.New("root cause")
	err := NewError(ErrUpstreamError, "upstream failed").WithCause(cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := NewError(ErrRateLimited, "slow down").WithRetryable(true)
	if !IsRetryable(retryable) {
		t.Error("expected IsRetryable to be true")
	}
	notRetryable := NewError(ErrUnauthorized, "bad key")
	if IsRetryable(notRetryable) {
		t.Error("expected IsRetryable to be false")
	}
	if IsRetryable(errors.New("plain error")) {
		t.Error("a non-*Error should never be retryable")
	}
}

func TestGetErrorCode(t *testing.T) {
	err := NewError(ErrNoResultsFound, "nothing found")
	if got := GetErrorCode(err); got != ErrNoResultsFound {
		t.Errorf("GetErrorCode = %v, want ErrNoResultsFound", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode(plain error) = %v, want empty", got)
	}
}

func TestErrorBuilderChaining(t *testing.T) {
	err := NewError(ErrForbidden, "nope").
		WithHTTPStatus(403).
		WithProvider("openai").
		WithRetryable(false)

	if err.HTTPStatus != 403 || err.Provider != "openai" || err.Retryable {
		t.Errorf("unexpected builder result: %+v", err)
	}
}
