// Package tokenizer counts tokens against a model's context window so the
// answerer can trim retrieved rows/chunks to resultLimitLLM before calling
// the model (§4.10). Modeled on the teacher's llm/tokenizer package.
package tokenizer

import (
	"fmt"
	"sync"
)

// Message is a lightweight role/content pair, kept independent of llm.Message
// to avoid a circular import between tokenizer and llm.
type Message struct {
	Role    string
	Content string
}

// Tokenizer is the unified token-counting interface.
type Tokenizer interface {
	CountTokens(text string) (int, error)
	CountMessages(messages []Message) (int, error)
	MaxTokens() int
	Name() string
}

var (
	modelTokenizers   = make(map[string]Tokenizer)
	modelTokenizersMu sync.RWMutex
)

// RegisterTokenizer registers a tokenizer for a model name.
func RegisterTokenizer(model string, t Tokenizer) {
	modelTokenizersMu.Lock()
	defer modelTokenizersMu.Unlock()
	modelTokenizers[model] = t
}

// GetTokenizer returns the tokenizer registered for model, trying prefix
// matching when there's no exact registration (e.g. "gpt-4o" covers
// "gpt-4o-mini").
func GetTokenizer(model string) (Tokenizer, error) {
	modelTokenizersMu.RLock()
	defer modelTokenizersMu.RUnlock()

	if t, ok := modelTokenizers[model]; ok {
		return t, nil
	}
	for prefix, t := range modelTokenizers {
		if len(model) >= len(prefix) && model[:len(prefix)] == prefix {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no tokenizer registered for model: %s", model)
}

// GetTokenizerOrEstimator returns the registered tokenizer for model,
// falling back to the character-count estimator when none is registered
// (non-OpenAI vendors don't expose a tiktoken-compatible encoding).
func GetTokenizerOrEstimator(model string) Tokenizer {
	if t, err := GetTokenizer(model); err == nil {
		return t
	}
	return NewEstimatorTokenizer(model, 0)
}
