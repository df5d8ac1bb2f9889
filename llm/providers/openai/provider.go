// Package openai implements the dedicated OpenAI adapter. Unlike the
// generic openaicompat variant, it claims native structured output via
// response_format={"type":"json_schema", ...}.
package openai

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

const defaultBaseURL = "https://api.openai.com/v1"

// Config configures the OpenAI adapter.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider is the dedicated OpenAI adapter.
type Provider struct {
	cfg     Config
	clients *providers.ClientCache

	mu        sync.Mutex
	lastUsage llm.Usage
}

// New creates an OpenAI adapter.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	p := &Provider{cfg: cfg}
	p.clients = providers.NewClientCache(func() *http.Client { return &http.Client{Timeout: cfg.Timeout} })
	return p
}

var _ llm.Provider = (*Provider)(nil)

func (p *Provider) Name() string                  { return "openai" }
func (p *Provider) SupportsStructuredOutput() bool { return true }
func (p *Provider) LastUsage() llm.Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsage
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Type       string `json:"type"`
	JSONSchema struct {
		Name   string `json:"name"`
		Strict bool   `json:"strict"`
		Schema map[string]any `json:"schema"`
	} `json:"json_schema"`
}

type request struct {
	Model          string      `json:"model"`
	Messages       []message   `json:"messages"`
	Temperature    float32     `json:"temperature,omitempty"`
	MaxTokens      int         `json:"max_tokens,omitempty"`
	ResponseFormat any         `json:"response_format,omitempty"`
}

type response struct {
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

func toMessages(messages []llm.Message) []message {
	folded := providers.FoldDeveloperRole(messages)
	out := make([]message, 0, len(folded))
	for _, m := range folded {
		out = append(out, message{Role: string(m.Role), Content: m.Content})
	}
	return out
}

func (p *Provider) model(cfg llm.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if p.cfg.Model != "" {
		return p.cfg.Model
	}
	return "gpt-4o-mini"
}

func (p *Provider) do(ctx context.Context, req request) (*response, error) {
	body, err := providers.NewJSONRequestBody(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.cfg.BaseURL, "/")+"/chat/completions", body)
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

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &llm.Error{Code: llm.ErrMalformed, Message: err.Error(), Provider: p.Name()}
	}
	return &out, nil
}

// Generate implements llm.Provider.
func (p *Provider) Generate(ctx context.Context, messages []llm.Message, cfg llm.Config) (string, error) {
	resp, err := p.do(ctx, request{
		Model:       p.model(cfg),
		Messages:    toMessages(messages),
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

// Parse implements llm.Provider using native structured output
// (response_format: json_schema) rather than schema injection.
func (p *Provider) Parse(ctx context.Context, messages []llm.Message, cfg llm.Config, schema llm.Schema) ([]byte, error) {
	format := jsonSchemaFormat{Type: "json_schema"}
	format.JSONSchema.Name = schema.Name
	format.JSONSchema.Strict = true
	format.JSONSchema.Schema = schemaToJSONSchema(schema)

	resp, err := p.do(ctx, request{
		Model:          p.model(cfg),
		Messages:       toMessages(messages),
		Temperature:    cfg.Temperature,
		MaxTokens:      cfg.MaxTokens,
		ResponseFormat: format,
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

func (p *Provider) recordUsage(resp *response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsage = llm.Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
}

// schemaToJSONSchema renders the simplified llm.Schema as a minimal JSON
// Schema object suitable for OpenAI's strict structured-output mode.
func schemaToJSONSchema(schema llm.Schema) map[string]any {
	props := make(map[string]any, len(schema.Fields))
	var required []string
	for _, f := range schema.Fields {
		props[f.Name] = map[string]any{"type": jsonSchemaType(f.Type), "description": f.Description}
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func jsonSchemaType(t string) string {
	switch t {
	case "integer", "number", "boolean", "array", "object", "string":
		return t
	default:
		return "string"
	}
}
