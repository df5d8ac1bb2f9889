// Package deepseek wires DeepSeek into the openaicompat generic adapter:
// DeepSeek's chat completions endpoint is OpenAI-wire-compatible, so this
// package is a thin composition rather than its own wire implementation.
package deepseek

import (
	"time"

	"github.com/janreigtorra/castellerq/llm/providers/openaicompat"
)

const defaultBaseURL = "https://api.deepseek.com/v1"
const defaultModel = "deepseek-chat"

// Config configures the DeepSeek adapter.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// New creates a DeepSeek adapter backed by openaicompat.Provider.
func New(cfg Config) *openaicompat.Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return openaicompat.New(openaicompat.Config{
		VendorName: "deepseek",
		BaseURL:    baseURL,
		APIKey:     cfg.APIKey,
		Model:      model,
		Timeout:    cfg.Timeout,
	})
}
