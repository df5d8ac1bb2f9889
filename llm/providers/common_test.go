package providers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/janreigtorra/castellerq/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHTTPErrorRateLimitIsRetryable(t *testing.T) {
	err := MapHTTPError(http.StatusTooManyRequests, "slow down", "openai")
	assert.Equal(t, llm.ErrRateLimited, err.Code)
	assert.True(t, err.Retryable)
}

func TestMapHTTPErrorBadRequestQuotaVsInvalid(t *testing.T) {
	quota := MapHTTPError(http.StatusBadRequest, "you have exceeded your quota", "openai")
	assert.Equal(t, llm.ErrQuotaExceeded, quota.Code)

	invalid := MapHTTPError(http.StatusBadRequest, "missing required field", "openai")
	assert.Equal(t, llm.ErrInvalidRequest, invalid.Code)
}

func TestMapHTTPErrorServerErrorsAreRetryable(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout} {
		err := MapHTTPError(status, "upstream down", "anthropic")
		assert.Equal(t, llm.ErrUpstreamError, err.Code)
		assert.True(t, err.Retryable)
	}
}

func TestMapHTTPErrorModelOverloaded(t *testing.T) {
	err := MapHTTPError(529, "overloaded", "anthropic")
	assert.Equal(t, llm.ErrModelOverloaded, err.Code)
	assert.True(t, err.Retryable)
}

func TestMapHTTPErrorUnauthorizedNotRetryable(t *testing.T) {
	err := MapHTTPError(http.StatusUnauthorized, "bad key", "openai")
	assert.Equal(t, llm.ErrUnauthorized, err.Code)
	assert.False(t, err.Retryable)
}

func TestReadErrorMessagePrefersNestedErrorMessage(t *testing.T) {
	body := strings.NewReader(`{"error": {"message": "invalid api key", "type": "auth_error"}}`)
	got := ReadErrorMessage(body)
	assert.Contains(t, got, "invalid api key")
	assert.Contains(t, got, "auth_error")
}

func TestReadErrorMessageFallsBackToRawBody(t *testing.T) {
	body := strings.NewReader("plain text failure")
	assert.Equal(t, "plain text failure", ReadErrorMessage(body))
}

func TestFoldDeveloperRoleMergesIntoSystem(t *testing.T) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "system prompt"},
		{Role: llm.RoleDeveloper, Content: "developer instructions"},
		{Role: llm.RoleUser, Content: "question"},
	}
	out := FoldDeveloperRole(messages)

	require.Len(t, out, 2)
	assert.Contains(t, out[0].Content, "system prompt")
	assert.Contains(t, out[0].Content, "developer instructions")
	assert.Equal(t, llm.RoleUser, out[1].Role)
}

func TestFoldDeveloperRoleWithoutSystemPromotesDeveloper(t *testing.T) {
	messages := []llm.Message{
		{Role: llm.RoleDeveloper, Content: "developer only"},
		{Role: llm.RoleUser, Content: "question"},
	}
	out := FoldDeveloperRole(messages)

	require.Len(t, out, 2)
	assert.Equal(t, llm.RoleSystem, out[0].Role)
	assert.Equal(t, "developer only", out[0].Content)
}

func TestExtractFirstJSONObjectStripsCodeFenceAndReasoning(t *testing.T) {
	text := "<think>let me reason</think>```json\n{\"tool\": \"sql\"}\n```"
	got, err := ExtractFirstJSONObject(text)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"tool"`)
}

func TestExtractFirstJSONObjectRejectsInvalidJSON(t *testing.T) {
	_, err := ExtractFirstJSONObject("not json at all")
	assert.Error(t, err)
}

func TestSchemaInjectionPromptListsRequiredAndOptionalFields(t *testing.T) {
	schema := llm.Schema{
		Name: "decision",
		Fields: []llm.SchemaField{
			{Name: "tool", Type: "string", Required: true, Description: "the chosen route"},
			{Name: "sql_query_type", Type: "string", Required: false},
		},
	}
	prompt := SchemaInjectionPrompt(schema)
	assert.Contains(t, prompt, "tool: string (required)")
	assert.Contains(t, prompt, "sql_query_type: string (optional)")
	assert.Contains(t, prompt, "the chosen route")
}

func TestClientCacheReusesClientForSameKey(t *testing.T) {
	builds := 0
	cache := NewClientCache(func() *http.Client {
		builds++
		return &http.Client{}
	})

	first := cache.Get("key-a")
	second := cache.Get("key-a")
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)

	cache.Get("key-b")
	assert.Equal(t, 2, builds)
}

func TestNewJSONRequestBodyMarshalsValue(t *testing.T) {
	reader, err := NewJSONRequestBody(map[string]string{"model": "gpt-4o"})
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, _ := reader.Read(buf)
	assert.Contains(t, string(buf[:n]), `"model":"gpt-4o"`)
}
