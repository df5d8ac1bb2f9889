package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader loads a Config following the precedence chain: defaults → YAML
// file → environment variables, the same chain as the teacher's
// config/loader.go.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a Loader with the castellerq env prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "CASTELLERQ"}
}

// WithConfigPath sets an optional YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithValidator registers a post-load validation function.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load builds the final Config.
func (l *Loader) Load() (*Config, error) {
	// A missing .env is not an error: in production, credentials arrive as
	// real environment variables, not a file.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("load config env: %w", err)
	}

	loadVendorCredentials(&cfg.Provider)
	cfg.Database.URL = rewritePoolerPort(os.Getenv("DATABASE_URL"))

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "-" {
			continue
		}
		if envTag == "" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("set %s: %w", envKey, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}

// loadVendorCredentials reads the eight per-vendor API keys (seven LLM
// vendors plus Cohere for reranking) directly from
// environment (§6) — these are secrets and are never reflected through
// YAML or the generic env-tag mechanism.
func loadVendorCredentials(p *ProviderConfig) {
	p.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	p.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	p.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	p.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	p.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	p.CerebrasAPIKey = os.Getenv("CEREBRAS_API_KEY")
	p.SambaNovaAPIKey = os.Getenv("SAMBANOVA_API_KEY")
	p.CohereAPIKey = os.Getenv("COHERE_API_KEY")
}

var poolerPortPattern = regexp.MustCompile(`:5432(/|$)`)

// rewritePoolerPort rewrites a direct-connection port (5432) to Supabase's
// pooler port (6543) when present in the URL (§6), leaving already-pooled
// or non-standard URLs untouched.
func rewritePoolerPort(url string) string {
	if url == "" {
		return url
	}
	return poolerPortPattern.ReplaceAllString(url, ":6543$1")
}

// MustLoad loads the configuration, panicking on failure — used only from
// cmd/ entrypoints where a config error is fatal at startup.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
