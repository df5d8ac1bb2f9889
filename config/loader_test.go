package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRewritePoolerPort(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"postgres://u:p@host:5432/db", "postgres://u:p@host:6543/db"},
		{"postgres://u:p@host:5432", "postgres://u:p@host:6543"},
		{"postgres://u:p@host:6543/db", "postgres://u:p@host:6543/db"},
		{"", ""},
	}
	for _, c := range cases {
		if got := rewritePoolerPort(c.in); got != c.want {
			t.Errorf("rewritePoolerPort(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLoaderEnvOverridesDefaults(t *testing.T) {
	t.Setenv("CASTELLERQ_ROUTER_MAX_QUESTION_TOKENS", "77")
	t.Setenv("CASTELLERQ_RAG_RERANK_ENABLED", "true")
	t.Setenv("CASTELLERQ_PROVIDER_TIMEOUT", "45s")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Router.MaxQuestionTokens != 77 {
		t.Errorf("Router.MaxQuestionTokens = %d, want 77", cfg.Router.MaxQuestionTokens)
	}
	if !cfg.RAG.RerankEnabled {
		t.Error("RAG.RerankEnabled = false, want true from env override")
	}
	if cfg.Provider.Timeout.String() != "45s" {
		t.Errorf("Provider.Timeout = %v, want 45s", cfg.Provider.Timeout)
	}
}

func TestLoaderYAMLOverridesDefaultsBeforeEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := "router:\n  max_question_tokens: 123\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}

	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Router.MaxQuestionTokens != 123 {
		t.Errorf("Router.MaxQuestionTokens = %d, want 123 from the YAML file", cfg.Router.MaxQuestionTokens)
	}
}

func TestLoaderMissingConfigFileIsNotAnError(t *testing.T) {
	_, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	if err != nil {
		t.Fatalf("Load() with a missing config file should not error, got: %v", err)
	}
}

func TestLoaderVendorCredentialsReadDirectlyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-key")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	key, ok := cfg.Provider.APIKeyFor(ProviderOpenAI)
	if !ok || key != "sk-test-key" {
		t.Errorf("APIKeyFor(openai) = (%q, %v), want (sk-test-key, true)", key, ok)
	}
}

func TestLoaderRunsValidators(t *testing.T) {
	called := false
	_, err := NewLoader().WithValidator(func(cfg *Config) error {
		called = true
		return nil
	}).Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if !called {
		t.Error("expected the registered validator to run")
	}
}
