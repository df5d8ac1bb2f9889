package answer

import (
	"context"
	"strings"
	"testing"

	"github.com/janreigtorra/castellerq/config"
	"github.com/janreigtorra/castellerq/llm"
	"github.com/janreigtorra/castellerq/types"
)

func TestPostProcessStripsMarkdownTables(t *testing.T) {
	in := "La colla X va fer un 4d9f.\n\n| Castell | Resultat |\n|---|---|\n| 4d9f | Descarregat |\n\nAixò va passar l'any 2022."
	out := postProcess(in)

	if strings.Contains(out, "|") {
		t.Errorf("postProcess left a pipe character in output: %q", out)
	}
	if !strings.Contains(out, "La colla X") || !strings.Contains(out, "l'any 2022") {
		t.Errorf("postProcess dropped surrounding prose: %q", out)
	}
}

func TestPostProcessCollapsesBlankLines(t *testing.T) {
	in := "Paràgraf u.\n\n\n\n\nParàgraf dos."
	out := postProcess(in)
	if strings.Contains(out, "\n\n\n") {
		t.Errorf("postProcess left 3+ consecutive newlines: %q", out)
	}
}

func TestPromptForResolvesByToolAndSQLType(t *testing.T) {
	if got := promptFor(types.ToolRAG, ""); got.system != ragPromptSet.system {
		t.Error("ToolRAG should resolve to ragPromptSet")
	}
	if got := promptFor(types.ToolHybrid, ""); got.system != hybridPromptSet.system {
		t.Error("ToolHybrid should resolve to hybridPromptSet")
	}
	if got := promptFor(types.ToolSQL, types.SQLBestEvent); got.system != sqlPromptSets[types.SQLBestEvent].system {
		t.Error("ToolSQL/SQLBestEvent should resolve to its dedicated prompt set")
	}
	if got := promptFor(types.ToolSQL, types.SQLQueryType("unknown")); got.system != defaultPromptSet.system {
		t.Error("ToolSQL with an unrecognized sql_query_type should fall back to defaultPromptSet")
	}
}

func TestBuildUserMessageOrdersTableBeforeDoc(t *testing.T) {
	a := &Answerer{model: "unregistered-model-for-test"}
	msg := a.buildUserMessage(Input{
		Question:     "Quin va ser el resultat?",
		TableContext: "Castell: 4d9f; Resultat: Descarregat",
		DocContext:   "El 4d9f és una estructura de quatre pisos.",
	})

	tableIdx := strings.Index(msg, "Castell: 4d9f")
	docIdx := strings.Index(msg, "estructura de quatre pisos")
	if tableIdx == -1 || docIdx == -1 {
		t.Fatalf("expected both contexts present in message: %q", msg)
	}
	if tableIdx > docIdx {
		t.Errorf("table context must precede doc context in the user message, got table@%d doc@%d", tableIdx, docIdx)
	}
}

// stubProvider is a minimal llm.Provider for exercising Answer() without a
// real vendor call.
type stubProvider struct {
	response string
}

func (s *stubProvider) Generate(ctx context.Context, messages []llm.Message, cfg llm.Config) (string, error) {
	return s.response, nil
}
func (s *stubProvider) Parse(ctx context.Context, messages []llm.Message, cfg llm.Config, schema llm.Schema) ([]byte, error) {
	return nil, nil
}
func (s *stubProvider) Name() string                     { return "stub" }
func (s *stubProvider) SupportsStructuredOutput() bool   { return false }
func (s *stubProvider) LastUsage() llm.Usage             { return llm.Usage{} }

func TestAnswerPostProcessesProviderOutput(t *testing.T) {
	registry := llm.NewProviderRegistry()
	registry.Register("openai", &stubProvider{response: "Resposta.\n\n| a | b |\n|---|---|\n"})

	a := &Answerer{registry: registry, provider: config.ProviderName("openai"), model: "gpt-4o"}
	text, err := a.Answer(context.Background(), Input{Question: "test", Tool: types.ToolRAG, DocContext: "doc"})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if strings.Contains(text, "|") {
		t.Errorf("Answer() result still contains a pipe character: %q", text)
	}
}
