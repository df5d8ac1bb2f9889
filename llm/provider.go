// Package llm defines the vendor-neutral provider contract (§4.1) and the
// request/response shapes every adapter speaks.
package llm

import (
	"context"
	"time"

	"github.com/janreigtorra/castellerq/types"
)

// Re-export the zero-dependency core types so callers only need to import
// this package for everyday use, the way the teacher's llm package
// re-exports types.* for its provider contract.
type (
	Message     = types.Message
	Role        = types.Role
	Error       = types.Error
	ErrorCode   = types.ErrorCode
	Schema      = types.Schema
	SchemaField = types.SchemaField
)

const (
	RoleSystem    = types.RoleSystem
	RoleDeveloper = types.RoleDeveloper
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant
)

const (
	ErrInvalidRequest    = types.ErrInvalidRequest
	ErrUnauthorized      = types.ErrUnauthorized
	ErrForbidden         = types.ErrForbidden
	ErrRateLimited       = types.ErrRateLimited
	ErrRateLimitExceeded = types.ErrRateLimitExceeded
	ErrQuotaExceeded     = types.ErrQuotaExceeded
	ErrModelOverloaded   = types.ErrModelOverloaded
	ErrTimeout           = types.ErrTimeout
	ErrMalformed         = types.ErrMalformed
	ErrUpstreamError     = types.ErrUpstreamError
)

// Config configures a single provider call (§3 LLMConfig).
type Config struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	Temperature    float32
	MaxTokens      int
	TimeoutSeconds int
}

// Timeout returns the configured per-call timeout, defaulting to 30s.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Usage records token accounting for the last call, when the vendor reports
// it (§4.1 side effect).
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the uniform contract every vendor adapter implements.
type Provider interface {
	// Generate sends {system, developer?, user} messages and returns
	// non-empty trimmed prose text.
	Generate(ctx context.Context, messages []Message, cfg Config) (string, error)

	// Parse sends messages plus a Schema and returns a value conforming to
	// it: native structured output when the vendor supports it, otherwise
	// schema-injection + JSON-mode + extraction (§4.1).
	Parse(ctx context.Context, messages []Message, cfg Config, schema Schema) ([]byte, error)

	// Name returns the vendor's adapter identifier, e.g. "openai".
	Name() string

	// SupportsStructuredOutput is the capability flag (§9) the core uses to
	// choose between native structured output and schema injection.
	SupportsStructuredOutput() bool

	// LastUsage returns token usage from the most recent call on this
	// adapter instance, or the zero value if the vendor didn't report one.
	LastUsage() Usage
}
