package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deckster/chartgen/domain/config"
)

func TestLoadString(t *testing.T) {
	t.Run("yaml_overrides_defaults", func(t *testing.T) {
		cfg, err := NewLoader().LoadString(`
provider:
  name: anthropic
  model: claude-sonnet-4-5
cache:
  backend: memory
  max_entries: 64
  ttl: 10m
batch:
  workers: 8
`, FormatYAML)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Provider.Name != "anthropic" || cfg.Provider.Model != "claude-sonnet-4-5" {
			t.Errorf("provider = %+v", cfg.Provider)
		}
		if cfg.Cache.MaxEntries != 64 || cfg.Cache.TTL.Duration() != 10*time.Minute {
			t.Errorf("cache = %+v", cfg.Cache)
		}
		if cfg.Batch.Workers != 8 {
			t.Errorf("workers = %d", cfg.Batch.Workers)
		}

		// Untouched sections keep their defaults.
		if cfg.Execution.Interpreter != "python3" {
			t.Errorf("interpreter = %q, want default", cfg.Execution.Interpreter)
		}
	})

	t.Run("json_format", func(t *testing.T) {
		cfg, err := NewLoader().LoadString(`{"theme": {"primary": "#2563eb", "style": "minimal"}}`, FormatJSON)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Theme.Primary != "#2563eb" || cfg.Theme.Style != "minimal" {
			t.Errorf("theme = %+v", cfg.Theme)
		}
	})

	t.Run("malformed_yaml_is_invalid_format", func(t *testing.T) {
		_, err := NewLoader().LoadString("provider: [unclosed", FormatYAML)
		if !errors.Is(err, config.ErrInvalidFormat) {
			t.Fatalf("err = %v, want ErrInvalidFormat", err)
		}
	})

	t.Run("validation_rejects_unknown_provider", func(t *testing.T) {
		_, err := NewLoader().LoadString("provider:\n  name: grok\n", FormatYAML)
		if !errors.Is(err, config.ErrValidationFailed) {
			t.Fatalf("err = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("validation_requires_redis_address", func(t *testing.T) {
		_, err := NewLoader().LoadString("cache:\n  backend: redis\n", FormatYAML)
		if !errors.Is(err, config.ErrValidationFailed) {
			t.Fatalf("err = %v, want ErrValidationFailed", err)
		}
	})

	t.Run("validation_can_be_disabled", func(t *testing.T) {
		loader := NewLoaderWithOptions(WithValidation(false))
		if _, err := loader.LoadString("provider:\n  name: grok\n", FormatYAML); err != nil {
			t.Fatalf("load failed with validation off: %v", err)
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("loads_yaml_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pipeline.yaml")
		if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := NewLoader().LoadFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("level = %q", cfg.Logging.Level)
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unsupported_extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pipeline.toml")
		if err := os.WriteFile(path, []byte("x = 1"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := NewLoader().LoadFile(path)
		if !errors.Is(err, config.ErrUnsupportedFormat) {
			t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
		}
	})
}

func TestEnvExpansion(t *testing.T) {
	t.Run("expands_set_variable", func(t *testing.T) {
		t.Setenv("CHARTGEN_TEST_KEY", "secret")
		cfg, err := NewLoader().LoadString("provider:\n  name: openai\n  api_key: ${CHARTGEN_TEST_KEY}\n", FormatYAML)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Provider.APIKey != "secret" {
			t.Errorf("api_key = %q", cfg.Provider.APIKey)
		}
	})

	t.Run("default_applies_when_unset", func(t *testing.T) {
		os.Unsetenv("CHARTGEN_TEST_MODEL")
		cfg, err := NewLoader().LoadString("provider:\n  name: ollama\n  model: ${CHARTGEN_TEST_MODEL:-llama3}\n", FormatYAML)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Provider.Model != "llama3" {
			t.Errorf("model = %q, want default", cfg.Provider.Model)
		}
	})

	t.Run("required_variable_fails_when_unset", func(t *testing.T) {
		os.Unsetenv("CHARTGEN_TEST_REQUIRED")
		_, err := NewLoader().LoadString("name: ${CHARTGEN_TEST_REQUIRED:?api key required}\n", FormatYAML)
		if !errors.Is(err, config.ErrMissingEnvVar) {
			t.Fatalf("err = %v, want ErrMissingEnvVar", err)
		}
	})

	t.Run("strict_mode_reports_unset_variables", func(t *testing.T) {
		os.Unsetenv("CHARTGEN_TEST_STRICT")
		loader := NewLoaderWithOptions(WithStrictEnv(true), WithValidation(false))
		_, err := loader.LoadString("name: ${CHARTGEN_TEST_STRICT}\n", FormatYAML)
		if !errors.Is(err, config.ErrMissingEnvVar) {
			t.Fatalf("err = %v, want ErrMissingEnvVar", err)
		}
	})

	t.Run("expansion_can_be_disabled", func(t *testing.T) {
		loader := NewLoaderWithOptions(WithEnvExpansion(false), WithValidation(false))
		cfg, err := loader.LoadString("name: ${NOT_EXPANDED}\n", FormatYAML)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Name != "${NOT_EXPANDED}" {
			t.Errorf("name = %q, want literal", cfg.Name)
		}
	})
}
