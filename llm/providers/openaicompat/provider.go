// Package openaicompat implements the generic OpenAI-wire-compatible
// adapter (§4.1): any vendor exposing a `/chat/completions`-shaped endpoint
// can be driven by configuring base URL, model and API key alone. Groq,
// Cerebras and SambaNova are wired through this package; DeepSeek composes
// it too (package deepseek) since its wire format is OpenAI-compatible.
//
// This variant never claims native structured output — Parse always uses
// the schema-injection fallback (§4.1), since not every OpenAI-compatible
// vendor implements response_format json_schema reliably.
package openaicompat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/janreigtorra/castellerq/llm"
	"github.com/janreigtorra/castellerq/llm/providers"
)

// Config configures one OpenAI-compatible vendor endpoint.
type Config struct {
	VendorName string // e.g. "groq", "cerebras", "sambanova"
	BaseURL    string // e.g. "https://api.groq.com/openai/v1"
	APIKey     string
	Model      string
	Timeout    time.Duration
}

// Provider drives an OpenAI-chat-completions-shaped HTTP endpoint.
type Provider struct {
	cfg     Config
	clients *providers.ClientCache

	mu        sync.Mutex
	lastUsage llm.Usage
}

// New creates an adapter for the given OpenAI-compatible vendor config.
func New(cfg Config) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	p := &Provider{cfg: cfg}
	p.clients = providers.NewClientCache(func() *http.Client {
		return &http.Client{Timeout: cfg.Timeout}
	})
	return p
}

var _ llm.Provider = (*Provider)(nil)

func (p *Provider) Name() string                  { return p.cfg.VendorName }
func (p *Provider) SupportsStructuredOutput() bool { return false }
func (p *Provider) LastUsage() llm.Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsage
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func toChatMessages(messages []llm.Message) []chatMessage {
	folded := providers.FoldDeveloperRole(messages)
	out := make([]chatMessage, 0, len(folded))
	for _, m := range folded {
		out = append(out, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func (p *Provider) model(cfg llm.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	return p.cfg.Model
}

func (p *Provider) do(ctx context.Context, req chatRequest) (*chatResponse, error) {
	body, err := providers.NewJSONRequestBody(req)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(p.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.clients.Get(p.cfg.APIKey).Do(httpReq)
	if err != nil {
		return nil, &llm.Error{Code: llm.ErrUpstreamError, Message: err.Error(), Retryable: true, Provider: p.Name()}
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &llm.Error{Code: llm.ErrMalformed, Message: err.Error(), Provider: p.Name()}
	}
	return &out, nil
}

// Generate implements llm.Provider.
func (p *Provider) Generate(ctx context.Context, messages []llm.Message, cfg llm.Config) (string, error) {
	resp, err := p.do(ctx, chatRequest{
		Model:       p.model(cfg),
		Messages:    toChatMessages(messages),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	p.recordUsage(resp)
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &llm.Error{Code: llm.ErrMalformed, Message: "empty completion", Provider: p.Name()}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Parse implements llm.Provider via the schema-injection fallback: it asks
// for JSON mode, injects the simplified schema into the user message, and
// extracts the first JSON object from the response text (§4.1).
func (p *Provider) Parse(ctx context.Context, messages []llm.Message, cfg llm.Config, schema llm.Schema) ([]byte, error) {
	augmented := make([]llm.Message, len(messages))
	copy(augmented, messages)
	for i := len(augmented) - 1; i >= 0; i-- {
		if augmented[i].Role == llm.RoleUser {
			augmented[i].Content = augmented[i].Content + "\n\n" + providers.SchemaInjectionPrompt(schema)
			break
		}
	}

	resp, err := p.do(ctx, chatRequest{
		Model:       p.model(cfg),
		Messages:    toChatMessages(augmented),
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	p.recordUsage(resp)
	if len(resp.Choices) == 0 {
		return nil, &llm.Error{Code: llm.ErrMalformed, Message: "empty completion", Provider: p.Name()}
	}
	return providers.ExtractFirstJSONObject(resp.Choices[0].Message.Content)
}

func (p *Provider) recordUsage(resp *chatResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsage = llm.Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
}
