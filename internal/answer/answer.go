// Package answer renders the final Catalan prose response from whichever
// context the orchestrator assembled: a pre-rendered table (SQL path), a
// document context (RAG path), or both (hybrid) (§4.8).
package answer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/janreigtorra/castellerq/config"
	"github.com/janreigtorra/castellerq/llm"
	"github.com/janreigtorra/castellerq/llm/tokenizer"
	"github.com/janreigtorra/castellerq/types"
)

// Answerer turns a question plus assembled context into final prose.
type Answerer struct {
	registry *llm.ProviderRegistry
	provider config.ProviderName
	model    string
}

func New(cfg *config.Config, registry *llm.ProviderRegistry) (*Answerer, error) {
	provider, model, err := config.ParseProviderModel(cfg.LLM.AnswerModel)
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}
	return &Answerer{registry: registry, provider: provider, model: model}, nil
}

// Input bundles everything the answerer needs to assemble its user message.
// TableContext and DocContext are both optional; the hybrid route supplies
// both, in which case SQL context precedes RAG context in the message, per
// the deterministic merge order the concurrency model requires.
type Input struct {
	Question     string
	Tool         types.Tool
	SQLQueryType types.SQLQueryType
	TableContext string
	DocContext   string
}

// Answer calls the configured model with the strategy-specific prompt
// triplet and returns post-processed prose.
func (a *Answerer) Answer(ctx context.Context, in Input) (string, error) {
	provider, ok := a.registry.Get(string(a.provider))
	if !ok {
		return "", fmt.Errorf("answer: provider %q not registered", a.provider)
	}

	set := promptFor(in.Tool, in.SQLQueryType)
	userMessage := a.buildUserMessage(in)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: set.system},
		{Role: llm.RoleDeveloper, Content: set.developer},
		{Role: llm.RoleUser, Content: userMessage},
	}

	cfg := llm.Config{Provider: string(a.provider), Model: a.model, Temperature: 0.4}
	text, err := provider.Generate(ctx, messages, cfg)
	if err != nil {
		return "", err
	}

	return postProcess(text), nil
}

// buildUserMessage trims oversized contexts against the model's token
// budget before assembling the final prompt (§4.10 "the LLM sees only the
// first N rows/chunks to conserve tokens").
func (a *Answerer) buildUserMessage(in Input) string {
	tok := tokenizer.GetTokenizerOrEstimator(a.model)
	budget := tok.MaxTokens() / 2 // reserve half the window for the model's own reply and prompt overhead

	var b strings.Builder
	fmt.Fprintf(&b, "Pregunta: %s\n", in.Question)

	if in.TableContext != "" {
		fmt.Fprintf(&b, "\nDades de la consulta:\n%s\n", trimToBudget(tok, in.TableContext, budget))
	}
	if in.DocContext != "" {
		budget -= estimateTokens(tok, in.TableContext)
		if budget < 0 {
			budget = 0
		}
		fmt.Fprintf(&b, "\nDocuments recuperats:\n%s\n", trimToBudget(tok, in.DocContext, budget))
	}
	return b.String()
}

func estimateTokens(tok tokenizer.Tokenizer, text string) int {
	n, err := tok.CountTokens(text)
	if err != nil {
		return len(text) / 4
	}
	return n
}

// trimToBudget truncates text by characters until it fits within budget
// tokens, preferring to cut at a paragraph boundary.
func trimToBudget(tok tokenizer.Tokenizer, text string, budget int) string {
	if budget <= 0 {
		return ""
	}
	if estimateTokens(tok, text) <= budget {
		return text
	}
	approxChars := budget * 4
	if approxChars >= len(text) {
		return text
	}
	cut := text[:approxChars]
	if idx := strings.LastIndex(cut, "\n\n"); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}

// pipeLine matches a line containing two or more pipe characters — the
// signature of a markdown table row the model was told not to produce.
var pipeLine = regexp.MustCompile(`(?m)^.*\|.*\|.*$\n?`)

// separatorLine matches a markdown table separator ("---|---|---" or
// ":--|--:" variants).
var separatorLine = regexp.MustCompile(`(?m)^[\s:|-]*-[\s:|-]*$\n?`)

var multiBlank = regexp.MustCompile(`\n{3,}`)

// postProcess strips any residual markdown tables the model produced
// despite the developer prompt's prohibition, and collapses excess
// whitespace (§4.8).
func postProcess(text string) string {
	text = pipeLine.ReplaceAllString(text, "")
	text = separatorLine.ReplaceAllString(text, "")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
