// Package gemini implements the dedicated Google Gemini adapter, using
// generateContent with a native responseSchema for structured output.
package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config configures the Gemini adapter.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider is the dedicated Gemini adapter.
type Provider struct {
	cfg     Config
	clients *providers.ClientCache

	mu        sync.Mutex
	lastUsage llm.Usage
}

// New creates a Gemini adapter.
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

func (p *Provider) Name() string                  { return "gemini" }
func (p *Provider) SupportsStructuredOutput() bool { return true }
func (p *Provider) LastUsage() llm.Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsage
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float32        `json:"temperature,omitempty"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type request struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type response struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// splitSystemAndContents folds system/developer messages into Gemini's
// systemInstruction field; Gemini's only roles are "user" and "model".
func splitSystemAndContents(messages []llm.Message) (*content, []content) {
	var system []string
	var rest []content
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem, llm.RoleDeveloper:
			system = append(system, m.Content)
		case llm.RoleAssistant:
			rest = append(rest, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			rest = append(rest, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}
	if len(system) == 0 {
		return nil, rest
	}
	return &content{Parts: []part{{Text: strings.Join(system, "\n\n")}}}, rest
}

func (p *Provider) model(cfg llm.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if p.cfg.Model != "" {
		return p.cfg.Model
	}
	return "gemini-2.0-flash"
}

func (p *Provider) do(ctx context.Context, model string, req request) (*response, error) {
	body, err := providers.NewJSONRequestBody(req)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(p.cfg.BaseURL, "/"), model, p.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
	sys, rest := splitSystemAndContents(messages)
	resp, err := p.do(ctx, p.model(cfg), request{
		SystemInstruction: sys,
		Contents:          rest,
		GenerationConfig:  generationConfig{Temperature: cfg.Temperature, MaxOutputTokens: cfg.MaxTokens},
	})
	if err != nil {
		return "", err
	}
	p.recordUsage(resp)
	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &llm.Error{Code: llm.ErrMalformed, Message: "empty completion", Provider: p.Name()}
	}
	return strings.TrimSpace(text), nil
}

// Parse implements llm.Provider using Gemini's native responseSchema.
func (p *Provider) Parse(ctx context.Context, messages []llm.Message, cfg llm.Config, schema llm.Schema) ([]byte, error) {
	sys, rest := splitSystemAndContents(messages)
	resp, err := p.do(ctx, p.model(cfg), request{
		SystemInstruction: sys,
		Contents:          rest,
		GenerationConfig: generationConfig{
			Temperature:      cfg.Temperature,
			MaxOutputTokens:  cfg.MaxTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   schemaToJSONSchema(schema),
		},
	})
	if err != nil {
		return nil, err
	}
	p.recordUsage(resp)
	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, &llm.Error{Code: llm.ErrMalformed, Message: "empty completion", Provider: p.Name()}
	}
	return providers.ExtractFirstJSONObject(text)
}

func extractText(resp *response) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (p *Provider) recordUsage(resp *response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsage = llm.Usage{InputTokens: resp.UsageMetadata.PromptTokenCount, OutputTokens: resp.UsageMetadata.CandidatesTokenCount}
}

func schemaToJSONSchema(schema llm.Schema) map[string]any {
	props := make(map[string]any, len(schema.Fields))
	var required []string
	for _, f := range schema.Fields {
		props[f.Name] = map[string]any{"type": jsonSchemaType(f.Type), "description": f.Description}
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]any{"type": "object", "properties": props, "required": required}
}

func jsonSchemaType(t string) string {
	switch t {
	case "integer", "number", "boolean", "array", "object", "string":
		return t
	default:
		return "string"
	}
}
