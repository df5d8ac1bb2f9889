// Package anthropic implements the dedicated Anthropic Messages API
// adapter. Anthropic has no "developer" role and takes system as a
// top-level field rather than a message; native structured output is
// achieved by forcing a single tool call whose input schema is the
// requested Schema.
package anthropic

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

const defaultBaseURL = "https://api.anthropic.com/v1"
const anthropicVersion = "2023-06-01"

// Config configures the Anthropic adapter.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Provider is the dedicated Anthropic adapter.
type Provider struct {
	cfg     Config
	clients *providers.ClientCache

	mu        sync.Mutex
	lastUsage llm.Usage
}

// New creates an Anthropic adapter.
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

func (p *Provider) Name() string                  { return "anthropic" }
func (p *Provider) SupportsStructuredOutput() bool { return true }
func (p *Provider) LastUsage() llm.Usage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsage
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type request struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float32            `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Tools       []tool             `json:"tools,omitempty"`
	ToolChoice  *toolChoice        `json:"tool_choice,omitempty"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type response struct {
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// splitSystemAndMessages pulls out system/developer messages into a single
// system string (Anthropic has no developer role — §9 message-role
// incompatibility) and returns the remaining user/assistant messages.
func splitSystemAndMessages(messages []llm.Message) (string, []anthropicMessage) {
	var system []string
	var rest []anthropicMessage
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem, llm.RoleDeveloper:
			system = append(system, m.Content)
		default:
			rest = append(rest, anthropicMessage{Role: string(m.Role), Content: m.Content})
		}
	}
	return strings.Join(system, "\n\n"), rest
}

func (p *Provider) model(cfg llm.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if p.cfg.Model != "" {
		return p.cfg.Model
	}
	return "claude-3-5-sonnet-latest"
}

func (p *Provider) maxTokens(cfg llm.Config) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 1024
}

func (p *Provider) do(ctx context.Context, req request) (*response, error) {
	body, err := providers.NewJSONRequestBody(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.cfg.BaseURL, "/")+"/messages", body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

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
	system, rest := splitSystemAndMessages(messages)
	resp, err := p.do(ctx, request{
		Model:       p.model(cfg),
		System:      system,
		Messages:    rest,
		Temperature: cfg.Temperature,
		MaxTokens:   p.maxTokens(cfg),
	})
	if err != nil {
		return "", err
	}
	p.recordUsage(resp)
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", &llm.Error{Code: llm.ErrMalformed, Message: "empty completion", Provider: p.Name()}
}

// Parse implements llm.Provider by forcing a single tool call whose input
// schema mirrors the requested Schema — Anthropic's native structured
// output mechanism.
func (p *Provider) Parse(ctx context.Context, messages []llm.Message, cfg llm.Config, schema llm.Schema) ([]byte, error) {
	system, rest := splitSystemAndMessages(messages)
	toolName := "emit_" + schema.Name
	resp, err := p.do(ctx, request{
		Model:       p.model(cfg),
		System:      system,
		Messages:    rest,
		Temperature: cfg.Temperature,
		MaxTokens:   p.maxTokens(cfg),
		Tools: []tool{{
			Name:        toolName,
			Description: "Emit the structured result.",
			InputSchema: schemaToJSONSchema(schema),
		}},
		ToolChoice: &toolChoice{Type: "tool", Name: toolName},
	})
	if err != nil {
		return nil, err
	}
	p.recordUsage(resp)
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == toolName {
			return block.Input, nil
		}
	}
	return nil, &llm.Error{Code: llm.ErrMalformed, Message: "no matching tool_use block in response", Provider: p.Name()}
}

func (p *Provider) recordUsage(resp *response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastUsage = llm.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
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
