package providers

import (
	"context"
	"testing"
	"time"

	"github.com/janreigtorra/castellerq/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider fails with a fixed error for the first failUntil calls,
// then succeeds, recording how many times Generate/Parse were invoked.
type countingProvider struct {
	failUntil int
	err       error
	calls     int
}

func (p *countingProvider) Generate(ctx context.Context, messages []llm.Message, cfg llm.Config) (string, error) {
	p.calls++
	if p.calls <= p.failUntil {
		return "", p.err
	}
	return "ok", nil
}

func (p *countingProvider) Parse(ctx context.Context, messages []llm.Message, cfg llm.Config, schema llm.Schema) ([]byte, error) {
	p.calls++
	if p.calls <= p.failUntil {
		return nil, p.err
	}
	return []byte(`{}`), nil
}

func (p *countingProvider) Name() string                  { return "counting" }
func (p *countingProvider) SupportsStructuredOutput() bool { return false }
func (p *countingProvider) LastUsage() llm.Usage           { return llm.Usage{} }

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2}
}

func TestRetryableProviderRetriesRateLimitUntilSuccess(t *testing.T) {
	inner := &countingProvider{
		failUntil: 2,
		err:       &llm.Error{Code: llm.ErrRateLimited, Retryable: true},
	}
	p := NewRetryableProvider(inner, fastRetryConfig(), nil)

	text, err := p.Generate(context.Background(), nil, llm.Config{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryableProviderExhaustsRateLimitIntoRateLimitExceeded(t *testing.T) {
	inner := &countingProvider{
		failUntil: 10,
		err:       &llm.Error{Code: llm.ErrRateLimited, Retryable: true},
	}
	p := NewRetryableProvider(inner, fastRetryConfig(), nil)

	_, err := p.Generate(context.Background(), nil, llm.Config{})
	require.Error(t, err)

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrRateLimitExceeded, llmErr.Code)
	assert.Equal(t, 3, inner.calls, "should stop after MaxAttempts")
}

func TestRetryableProviderNonRetryableErrorStopsImmediately(t *testing.T) {
	inner := &countingProvider{
		failUntil: 10,
		err:       &llm.Error{Code: llm.ErrUnauthorized, Retryable: false},
	}
	p := NewRetryableProvider(inner, fastRetryConfig(), nil)

	_, err := p.Generate(context.Background(), nil, llm.Config{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "no retry for a non-retryable error")
}

func TestRetryableProviderOtherTransportErrorGetsOneExtraAttempt(t *testing.T) {
	inner := &countingProvider{
		failUntil: 1,
		err:       &llm.Error{Code: llm.ErrUpstreamError, Retryable: true},
	}
	p := NewRetryableProvider(inner, fastRetryConfig(), nil)

	text, err := p.Generate(context.Background(), nil, llm.Config{})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, inner.calls, "one retry beyond the first attempt")
}

func TestRetryableProviderParseSucceedsAfterRetry(t *testing.T) {
	inner := &countingProvider{
		failUntil: 1,
		err:       &llm.Error{Code: llm.ErrModelOverloaded, Retryable: true},
	}
	p := NewRetryableProvider(inner, fastRetryConfig(), nil)

	body, err := p.Parse(context.Background(), nil, llm.Config{}, llm.Schema{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(body))
}

func TestRetryableProviderDelegatesMetadata(t *testing.T) {
	inner := &countingProvider{}
	p := NewRetryableProvider(inner, fastRetryConfig(), nil)
	assert.Equal(t, "counting", p.Name())
	assert.False(t, p.SupportsStructuredOutput())
}
