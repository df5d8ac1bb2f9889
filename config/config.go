// Package config loads castellerq's configuration: defaults, overridden by
// an optional YAML file, overridden by environment variables (§6). This
// mirrors the teacher's config/loader.go precedence chain.
package config

import "time"

// Config is the complete process configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" env:"SERVER"`
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`
	LLM      LLMConfig      `yaml:"llm" env:"LLM"`
	Router   RouterConfig   `yaml:"router" env:"ROUTER"`
	RAG      RAGConfig      `yaml:"rag" env:"RAG"`
	Pool     PoolConfig     `yaml:"pool" env:"POOL"`
	Provider  ProviderConfig  `yaml:"provider" env:"PROVIDER"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// TelemetryConfig controls request tracing and metrics. Disabled by
// default: the global OTel providers stay noop until a collector endpoint
// is actually deployed alongside the service.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" env:"ENABLED"`
	ServiceName string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate  float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// ServerConfig configures the process's own HTTP surface: /healthz plus the
// /v1/question and /v1/route endpoints mounted in cmd/castellerq.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig configures the relational store connection. URL is read
// directly from DATABASE_URL (§6), not the generic env-tag mechanism,
// because of the pooler-port rewrite rule.
type DatabaseConfig struct {
	URL string `yaml:"url" env:"-"`
}

// LLMConfig names which provider:model pair handles each role (§6).
type LLMConfig struct {
	RouterModel    string `yaml:"router_model" env:"ROUTER_MODEL"`
	AnswerModel    string `yaml:"answer_model" env:"ANSWER_MODEL"`
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
}

// RouterConfig holds the pre-check and classification tunables for the
// router pipeline (§4.3).
type RouterConfig struct {
	// MaxQuestionTokens is the word-boundary token-count ceiling; above it
	// the router returns the canned "too long" direct response.
	MaxQuestionTokens int `yaml:"max_question_tokens" env:"MAX_QUESTION_TOKENS"`

	// TargetLanguage and AcceptedRelatives define the language filter: a
	// detected language outside this set triggers the canned apology.
	TargetLanguage    string   `yaml:"target_language" env:"TARGET_LANGUAGE"`
	AcceptedRelatives []string `yaml:"accepted_relatives" env:"-"`

	// DirectToSQLThreshold / RAGToSQLThreshold are the fuzzy-promotion
	// floors applied when the model chose direct/rag but entities were
	// extracted anyway (step 6 of §4.3).
	DirectToSQLThreshold float64 `yaml:"direct_to_sql_threshold" env:"DIRECT_TO_SQL_THRESHOLD"`
	RAGToSQLThreshold    float64 `yaml:"rag_to_sql_threshold" env:"RAG_TO_SQL_THRESHOLD"`

	// CustomFallbackThreshold is the floor below which an unresolved
	// sql/hybrid classification falls back to the custom query type.
	CustomFallbackThreshold float64 `yaml:"custom_fallback_threshold" env:"CUSTOM_FALLBACK_THRESHOLD"`
}

// RAGConfig holds retrieval tunables (§6).
type RAGConfig struct {
	InitialK       int     `yaml:"initial_k" env:"INITIAL_K"`
	FinalK         int     `yaml:"final_k" env:"FINAL_K"`
	MinSimilarity  float64 `yaml:"min_similarity" env:"MIN_SIMILARITY"`
	RerankEnabled  bool    `yaml:"rerank_enabled" env:"RERANK_ENABLED"`
	ResultLimitUI  int     `yaml:"result_limit_ui" env:"RESULT_LIMIT_UI"`
	ResultLimitLLM int     `yaml:"result_limit_llm" env:"RESULT_LIMIT_LLM"`
}

// PoolConfig sizes the relational connection pool (§6).
type PoolConfig struct {
	Min            int           `yaml:"min" env:"MIN"`
	Max            int           `yaml:"max" env:"MAX"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" env:"ACQUIRE_TIMEOUT"`
}

// ProviderConfig holds the per-vendor call limits (§6) and the credentials
// read from environment (never from YAML — secrets don't belong in files
// checked into a repo).
type ProviderConfig struct {
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Retries     int           `yaml:"retries" env:"RETRIES"`
	BackoffBase time.Duration `yaml:"backoff_base" env:"BACKOFF_BASE"`

	OpenAIAPIKey    string `yaml:"-" env:"-"`
	AnthropicAPIKey string `yaml:"-" env:"-"`
	GroqAPIKey      string `yaml:"-" env:"-"`
	GeminiAPIKey    string `yaml:"-" env:"-"`
	DeepSeekAPIKey  string `yaml:"-" env:"-"`
	CerebrasAPIKey  string `yaml:"-" env:"-"`
	SambaNovaAPIKey string `yaml:"-" env:"-"`
	CohereAPIKey    string `yaml:"-" env:"-"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// ProviderName identifies one of the seven recognized LLM vendors.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGroq      ProviderName = "groq"
	ProviderGemini    ProviderName = "gemini"
	ProviderDeepSeek  ProviderName = "deepseek"
	ProviderCerebras  ProviderName = "cerebras"
	ProviderSambaNova ProviderName = "sambanova"
)

// APIKeyFor returns the configured credential for the named vendor, and
// whether one was set.
func (c ProviderConfig) APIKeyFor(name ProviderName) (string, bool) {
	var key string
	switch name {
	case ProviderOpenAI:
		key = c.OpenAIAPIKey
	case ProviderAnthropic:
		key = c.AnthropicAPIKey
	case ProviderGroq:
		key = c.GroqAPIKey
	case ProviderGemini:
		key = c.GeminiAPIKey
	case ProviderDeepSeek:
		key = c.DeepSeekAPIKey
	case ProviderCerebras:
		key = c.CerebrasAPIKey
	case ProviderSambaNova:
		key = c.SambaNovaAPIKey
	}
	return key, key != ""
}
