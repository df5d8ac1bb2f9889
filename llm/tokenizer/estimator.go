package tokenizer

import (
	"unicode/utf8"
)

// EstimatorTokenizer is a character-count-based fallback for vendors
// without a known tiktoken encoding (Anthropic, Gemini, Groq, DeepSeek,
// Cerebras, SambaNova).
type EstimatorTokenizer struct {
	model         string
	maxTokens     int
	charsPerToken float64
}

// NewEstimatorTokenizer creates a generic estimator for model.
func NewEstimatorTokenizer(model string, maxTokens int) *EstimatorTokenizer {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &EstimatorTokenizer{model: model, maxTokens: maxTokens, charsPerToken: 4.0}
}

// CountTokens estimates token count at ~4 Catalan/Latin-script characters
// per token.
func (e *EstimatorTokenizer) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	chars := utf8.RuneCountInString(text)
	estimated := int(float64(chars) / e.charsPerToken)
	if estimated == 0 {
		estimated = 1
	}
	return estimated, nil
}

// CountMessages implements Tokenizer.
func (e *EstimatorTokenizer) CountMessages(messages []Message) (int, error) {
	total := 0
	for _, msg := range messages {
		tokens, err := e.CountTokens(msg.Content)
		if err != nil {
			return 0, err
		}
		total += tokens + 4
	}
	total += 3
	return total, nil
}

func (e *EstimatorTokenizer) MaxTokens() int { return e.maxTokens }
func (e *EstimatorTokenizer) Name() string   { return "estimator" }
