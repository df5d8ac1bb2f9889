package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/janreigtorra/castellerq/llm"
	"github.com/janreigtorra/castellerq/llm/providers"
	"github.com/janreigtorra/castellerq/llm/providers/anthropic"
	"github.com/janreigtorra/castellerq/llm/providers/deepseek"
	"github.com/janreigtorra/castellerq/llm/providers/gemini"
	"github.com/janreigtorra/castellerq/llm/providers/openai"
	"github.com/janreigtorra/castellerq/llm/providers/openaicompat"
	"go.uber.org/zap"
)

// ParseProviderModel splits a "provider:model" string as used by
// routerModel/answerModel (§6).
func ParseProviderModel(s string) (provider ProviderName, model string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid provider:model string %q", s)
	}
	return ProviderName(parts[0]), parts[1], nil
}

// BuildRegistry wires every vendor with a configured API key into a
// ProviderRegistry, wrapping each with the retry policy (§4.1). It fails
// only when a vendor named by routerModel or answerModel is missing its
// credential — unconfigured vendors the core never routes to are skipped
// silently, matching §6's "fatal startup error for that vendor" scoping.
func BuildRegistry(cfg *Config, logger *zap.Logger) (*llm.ProviderRegistry, error) {
	reg := llm.NewProviderRegistry()
	retryCfg := providers.RetryConfig{
		MaxAttempts:  cfg.Provider.Retries,
		InitialDelay: cfg.Provider.BackoffBase,
		Multiplier:   2,
	}
	if retryCfg.MaxAttempts <= 0 {
		retryCfg.MaxAttempts = 3
	}
	if retryCfg.InitialDelay <= 0 {
		retryCfg.InitialDelay = 2 * time.Second
	}
	timeout := cfg.Provider.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	register := func(name ProviderName, build func(apiKey string) llm.Provider) {
		apiKey, ok := cfg.Provider.APIKeyFor(name)
		if !ok {
			return
		}
		reg.Register(string(name), providers.NewRetryableProvider(build(apiKey), retryCfg, logger))
	}

	register(ProviderOpenAI, func(key string) llm.Provider {
		return openai.New(openai.Config{APIKey: key, Timeout: timeout})
	})
	register(ProviderAnthropic, func(key string) llm.Provider {
		return anthropic.New(anthropic.Config{APIKey: key, Timeout: timeout})
	})
	register(ProviderGemini, func(key string) llm.Provider {
		return gemini.New(gemini.Config{APIKey: key, Timeout: timeout})
	})
	register(ProviderDeepSeek, func(key string) llm.Provider {
		return deepseek.New(deepseek.Config{APIKey: key, Timeout: timeout})
	})
	register(ProviderGroq, func(key string) llm.Provider {
		return openaicompat.New(openaicompat.Config{VendorName: "groq", BaseURL: "https://api.groq.com/openai/v1", APIKey: key, Timeout: timeout})
	})
	register(ProviderCerebras, func(key string) llm.Provider {
		return openaicompat.New(openaicompat.Config{VendorName: "cerebras", BaseURL: "https://api.cerebras.ai/v1", APIKey: key, Timeout: timeout})
	})
	register(ProviderSambaNova, func(key string) llm.Provider {
		return openaicompat.New(openaicompat.Config{VendorName: "sambanova", BaseURL: "https://api.sambanova.ai/v1", APIKey: key, Timeout: timeout})
	})

	if err := requireConfiguredVendor(reg, cfg.LLM.RouterModel, "routerModel"); err != nil {
		return nil, err
	}
	if err := requireConfiguredVendor(reg, cfg.LLM.AnswerModel, "answerModel"); err != nil {
		return nil, err
	}
	return reg, nil
}

func requireConfiguredVendor(reg *llm.ProviderRegistry, providerModel, field string) error {
	provider, _, err := ParseProviderModel(providerModel)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if _, ok := reg.Get(string(provider)); !ok {
		return fmt.Errorf("%s selects provider %q but no API key is configured for it", field, provider)
	}
	return nil
}
