package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/janreigtorra/castellerq/llm"
	"go.uber.org/zap"
)

// RetryConfig holds the retry policy from §4.1: rate-limit errors back off
// exponentially starting at 2s, doubling, up to 3 total attempts; other
// transport errors retry at most once, and only if idempotent.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryConfig matches §4.1's documented policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: 2 * time.Second, Multiplier: 2}
}

// RetryableProvider wraps an llm.Provider with the retry/backoff policy.
// It also deducts elapsed retry time from the context deadline so a failing
// provider cannot starve the rest of the request (§9 retry budgets).
type RetryableProvider struct {
	inner  llm.Provider
	config RetryConfig
	logger *zap.Logger
}

// NewRetryableProvider wraps inner with the given retry policy.
func NewRetryableProvider(inner llm.Provider, config RetryConfig, logger *zap.Logger) *RetryableProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryableProvider{
		inner:  inner,
		config: config,
		logger: logger.With(zap.String("component", "retry_provider"), zap.String("provider", inner.Name())),
	}
}

var _ llm.Provider = (*RetryableProvider)(nil)

func (p *RetryableProvider) Name() string                     { return p.inner.Name() }
func (p *RetryableProvider) SupportsStructuredOutput() bool    { return p.inner.SupportsStructuredOutput() }
func (p *RetryableProvider) LastUsage() llm.Usage              { return p.inner.LastUsage() }

// Generate retries the inner provider's Generate call per the retry policy.
func (p *RetryableProvider) Generate(ctx context.Context, messages []llm.Message, cfg llm.Config) (string, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxAttempts(); attempt++ {
		if attempt > 0 {
			if err := p.wait(ctx, attempt, lastErr); err != nil {
				return "", err
			}
		}
		text, err := p.inner.Generate(ctx, messages, cfg)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !p.shouldRetry(err, attempt) {
			if attempt+1 >= p.maxAttempts() {
				return "", p.exhausted(err)
			}
			return "", err
		}
		p.logger.Warn("generate failed, will retry", zap.Int("attempt", attempt), zap.Error(err))
	}
	return "", p.exhausted(lastErr)
}

// Parse retries the inner provider's Parse call per the retry policy.
func (p *RetryableProvider) Parse(ctx context.Context, messages []llm.Message, cfg llm.Config, schema llm.Schema) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxAttempts(); attempt++ {
		if attempt > 0 {
			if err := p.wait(ctx, attempt, lastErr); err != nil {
				return nil, err
			}
		}
		val, err := p.inner.Parse(ctx, messages, cfg, schema)
		if err == nil {
			return val, nil
		}
		lastErr = err
		if !p.shouldRetry(err, attempt) {
			if attempt+1 >= p.maxAttempts() {
				return nil, p.exhausted(err)
			}
			return nil, err
		}
		p.logger.Warn("parse failed, will retry", zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, p.exhausted(lastErr)
}

func (p *RetryableProvider) maxAttempts() int {
	if p.config.MaxAttempts <= 0 {
		return 1
	}
	return p.config.MaxAttempts
}

// shouldRetry decides whether to retry err at the given (zero-based)
// attempt index: rate limits get the full backoff budget; other transport
// errors get exactly one extra attempt.
func (p *RetryableProvider) shouldRetry(err error, attempt int) bool {
	var llmErr *llm.Error
	if !errors.As(err, &llmErr) {
		return false
	}
	if !llmErr.Retryable {
		return false
	}
	if llmErr.Code == llm.ErrRateLimited || llmErr.Code == llm.ErrModelOverloaded {
		return attempt+1 < p.maxAttempts()
	}
	return attempt < 1
}

func (p *RetryableProvider) wait(ctx context.Context, attempt int, lastErr error) error {
	delay := p.config.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.config.Multiplier)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (p *RetryableProvider) exhausted(lastErr error) error {
	var llmErr *llm.Error
	if errors.As(lastErr, &llmErr) && (llmErr.Code == llm.ErrRateLimited || llmErr.Code == llm.ErrModelOverloaded) {
		return &llm.Error{
			Code:      llm.ErrRateLimitExceeded,
			Message:   fmt.Sprintf("rate limit exceeded after %d attempts", p.maxAttempts()),
			Retryable: false,
			Provider:  p.inner.Name(),
			Cause:     lastErr,
		}
	}
	return fmt.Errorf("call failed after %d attempts: %w", p.maxAttempts(), lastErr)
}
