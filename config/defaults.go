package config

import "time"

// DefaultConfig returns the baseline configuration before YAML/env overrides.
func DefaultConfig() *Config {
	return &Config{
		Server:   DefaultServerConfig(),
		Database: DatabaseConfig{},
		LLM:      DefaultLLMConfig(),
		Router:   DefaultRouterConfig(),
		RAG:      DefaultRAGConfig(),
		Pool:     DefaultPoolConfig(),
		Provider:  DefaultProviderConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:     false,
		ServiceName: "castellerq",
		SampleRate:  0.1,
	}
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		RouterModel:    "openai:gpt-4o-mini",
		AnswerModel:    "openai:gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-large",
	}
}

func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		MaxQuestionTokens:       25,
		TargetLanguage:          "ca",
		AcceptedRelatives:       []string{"es", "pt"},
		DirectToSQLThreshold:    0.85,
		RAGToSQLThreshold:       0.80,
		CustomFallbackThreshold: 0.3,
	}
}

func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		InitialK:       15,
		FinalK:         5,
		MinSimilarity:  0.25,
		RerankEnabled:  false,
		ResultLimitUI:  50,
		ResultLimitLLM: 20,
	}
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Min:            2,
		Max:            10,
		AcquireTimeout: 5 * time.Second,
	}
}

func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Timeout:     30 * time.Second,
		Retries:     3,
		BackoffBase: 2 * time.Second,
	}
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}
