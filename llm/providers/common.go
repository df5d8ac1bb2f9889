// Package providers holds adapter-shared helpers: HTTP error mapping, the
// developer-role fold, JSON-object extraction for schema-injection parsing,
// and a per-API-key HTTP client cache (§4.1 client reuse).
package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/janreigtorra/castellerq/llm"
)

// MapHTTPError maps an HTTP status code to the matching llm.Error, marking
// retryable errors per §4.1 (rate limits, 5xx, vendor overload).
func MapHTTPError(status int, msg, provider string) *llm.Error {
	switch status {
	case http.StatusUnauthorized:
		return &llm.Error{Code: llm.ErrUnauthorized, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusForbidden:
		return &llm.Error{Code: llm.ErrForbidden, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusTooManyRequests:
		return &llm.Error{Code: llm.ErrRateLimited, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	case http.StatusBadRequest:
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "credit") || strings.Contains(lower, "limit") {
			return &llm.Error{Code: llm.ErrQuotaExceeded, Message: msg, HTTPStatus: status, Provider: provider}
		}
		return &llm.Error{Code: llm.ErrInvalidRequest, Message: msg, HTTPStatus: status, Provider: provider}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &llm.Error{Code: llm.ErrUpstreamError, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	case 529: // "model overloaded", used by some vendors
		return &llm.Error{Code: llm.ErrModelOverloaded, Message: msg, HTTPStatus: status, Retryable: true, Provider: provider}
	default:
		return &llm.Error{Code: llm.ErrUpstreamError, Message: msg, HTTPStatus: status, Retryable: status >= 500, Provider: provider}
	}
}

// ReadErrorMessage reads an error response body, preferring a nested
// {"error": {"message": ...}} shape and falling back to the raw text.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}
	return string(data)
}

// SafeCloseBody closes an HTTP response body, swallowing the close error.
func SafeCloseBody(body io.ReadCloser) {
	if body != nil {
		_ = body.Close()
	}
}

// FoldDeveloperRole concatenates a developer message into the system
// message for vendors that lack a native "developer" role (§3 Message
// triplet, §9). The contract {system, developer?, user} is otherwise
// invariant across vendors.
func FoldDeveloperRole(messages []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	var system *llm.Message
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			cp := m
			system = &cp
			out = append(out, m)
		case llm.RoleDeveloper:
			if system != nil {
				for i := range out {
					if out[i].Role == llm.RoleSystem {
						out[i].Content = out[i].Content + "\n\n" + m.Content
						break
					}
				}
			} else {
				folded := m
				folded.Role = llm.RoleSystem
				out = append(out, folded)
			}
		default:
			out = append(out, m)
		}
	}
	return out
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// reasoningTagPattern strips <think>...</think>-style reasoning blocks some
// vendors prepend to JSON-mode responses.
var reasoningTagPattern = regexp.MustCompile(`(?is)<(think|reasoning)>.*?</(think|reasoning)>`)

// ExtractFirstJSONObject strips any reasoning tags and returns the first
// top-level JSON object found in text (§4.1 Parse, schema-injection path).
func ExtractFirstJSONObject(text string) ([]byte, error) {
	cleaned := reasoningTagPattern.ReplaceAllString(text, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	match := jsonObjectPattern.FindString(cleaned)
	if match == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	var probe any
	if err := json.Unmarshal([]byte(match), &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return []byte(match), nil
}

// SchemaInjectionPrompt renders a Schema as field-name -> type instructions
// to append to the user message for vendors without native structured
// output (§4.1).
func SchemaInjectionPrompt(schema llm.Schema) string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object only, no prose, matching exactly this shape:\n")
	for _, f := range schema.Fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "- %s: %s (%s)", f.Name, f.Type, req)
		if f.Description != "" {
			fmt.Fprintf(&b, " — %s", f.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ClientCache caches one *http.Client per API key so an adapter doesn't pay
// per-call TLS setup (§4.1 client reuse). Safe for concurrent use.
type ClientCache struct {
	mu      sync.RWMutex
	clients map[string]*http.Client
	newFn   func() *http.Client
}

// NewClientCache creates a cache whose entries are built by newFn.
func NewClientCache(newFn func() *http.Client) *ClientCache {
	return &ClientCache{clients: make(map[string]*http.Client), newFn: newFn}
}

// Get returns the cached client for apiKey, creating one on first use.
func (c *ClientCache) Get(apiKey string) *http.Client {
	c.mu.RLock()
	if client, ok := c.clients[apiKey]; ok {
		c.mu.RUnlock()
		return client
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[apiKey]; ok {
		return client
	}
	client := c.newFn()
	c.clients[apiKey] = client
	return client
}

// NewJSONRequestBody marshals v into a bytes.Reader for an HTTP request body.
func NewJSONRequestBody(v any) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(data), nil
}
