// Package config provides domain models for pipeline configuration.
package config

import "time"

// PipelineConfig represents the complete chart generation configuration.
type PipelineConfig struct {
	// Name is a human-readable name for this configuration.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Version is the configuration schema version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Provider contains LLM provider settings.
	Provider ProviderConfig `json:"provider,omitempty" yaml:"provider,omitempty"`
	// Cache contains artifact cache settings.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// Execution contains execution bridge settings.
	Execution ExecutionConfig `json:"execution,omitempty" yaml:"execution,omitempty"`
	// RateLimit contains provider rate limiting settings.
	RateLimit RateLimitConfig `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
	// Theme contains default theme seeds.
	Theme ThemeConfig `json:"theme,omitempty" yaml:"theme,omitempty"`
	// Batch contains batch processing settings.
	Batch BatchConfig `json:"batch,omitempty" yaml:"batch,omitempty"`
	// Logging contains logging settings.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// ProviderConfig contains LLM provider settings. An empty Name disables
// LLM consultation; selection and labeling fall back to rules.
type ProviderConfig struct {
	// Name identifies the provider (anthropic, openai, ollama, or empty).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Model is the model identifier.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// APIKey authenticates with the provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Timeout bounds a single completion.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CacheConfig contains artifact cache settings.
type CacheConfig struct {
	// Backend selects the cache backend (memory or redis).
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// MaxEntries bounds the in-memory cache size.
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	// TTL bounds the freshness window of cached artifacts.
	TTL Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	// RedisAddress is the Redis server address for the redis backend.
	RedisAddress string `json:"redis_address,omitempty" yaml:"redis_address,omitempty"`
	// RedisPassword authenticates with Redis.
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	// RedisDB selects the Redis database index.
	RedisDB int `json:"redis_db,omitempty" yaml:"redis_db,omitempty"`
}

// ExecutionConfig contains execution bridge settings.
type ExecutionConfig struct {
	// Enabled toggles out-of-process execution of generated code.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Interpreter is the interpreter binary (default python3).
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`
	// Timeout bounds a single execution.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// MaxConcurrent limits concurrent executions.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	// BreakerThreshold is the consecutive failure count that opens the circuit.
	BreakerThreshold int `json:"breaker_threshold,omitempty" yaml:"breaker_threshold,omitempty"`
}

// RateLimitConfig contains provider rate limiting settings.
type RateLimitConfig struct {
	// Rate is the number of completions allowed per interval.
	Rate int `json:"rate,omitempty" yaml:"rate,omitempty"`
	// Burst is the token bucket capacity.
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty"`
	// RetryAttempts is the maximum completion attempts.
	RetryAttempts int `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty"`
	// RetryDelay is the initial retry delay.
	RetryDelay Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
}

// ThemeConfig contains default theme seed colors.
type ThemeConfig struct {
	// Primary is the primary seed color as hex.
	Primary string `json:"primary,omitempty" yaml:"primary,omitempty"`
	// Secondary is the secondary seed color as hex.
	Secondary string `json:"secondary,omitempty" yaml:"secondary,omitempty"`
	// Tertiary is the tertiary seed color as hex.
	Tertiary string `json:"tertiary,omitempty" yaml:"tertiary,omitempty"`
	// Style is the visual style (modern, classic, minimal).
	Style string `json:"style,omitempty" yaml:"style,omitempty"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	// Workers is the number of concurrent generation workers.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format selects the output format (json or console).
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Default returns a configuration with sensible defaults.
func Default() *PipelineConfig {
	return &PipelineConfig{
		Version: "1",
		Cache: CacheConfig{
			Backend:    "memory",
			MaxEntries: 1024,
			TTL:        Duration(time.Hour),
		},
		Execution: ExecutionConfig{
			Enabled:          true,
			Interpreter:      "python3",
			Timeout:          Duration(30 * time.Second),
			MaxConcurrent:    4,
			BreakerThreshold: 5,
		},
		RateLimit: RateLimitConfig{
			Rate:          30,
			Burst:         10,
			RetryAttempts: 3,
			RetryDelay:    Duration(200 * time.Millisecond),
		},
		Theme: ThemeConfig{
			Style: "modern",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
