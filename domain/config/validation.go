package config

import (
	"fmt"
	"strings"
)

// knownProviders are the supported LLM provider names.
var knownProviders = map[string]bool{
	"":          true,
	"anthropic": true,
	"openai":    true,
	"ollama":    true,
}

// knownCacheBackends are the supported cache backends.
var knownCacheBackends = map[string]bool{
	"":       true,
	"memory": true,
	"redis":  true,
}

// knownStyles are the supported theme styles.
var knownStyles = map[string]bool{
	"":        true,
	"modern":  true,
	"classic": true,
	"minimal": true,
}

// Validate checks the configuration for structural problems. It returns
// every problem found joined into one error.
func (c *PipelineConfig) Validate() error {
	var problems []string

	if !knownProviders[c.Provider.Name] {
		problems = append(problems, fmt.Sprintf("provider.name: unknown provider %q", c.Provider.Name))
	}
	if !knownCacheBackends[c.Cache.Backend] {
		problems = append(problems, fmt.Sprintf("cache.backend: unknown backend %q", c.Cache.Backend))
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddress == "" {
		problems = append(problems, "cache.redis_address: required for the redis backend")
	}
	if c.Cache.MaxEntries < 0 {
		problems = append(problems, "cache.max_entries: must not be negative")
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, "cache.ttl: must not be negative")
	}
	if c.Execution.MaxConcurrent < 0 {
		problems = append(problems, "execution.max_concurrent: must not be negative")
	}
	if c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0 {
		problems = append(problems, "rate_limit: rate and burst must not be negative")
	}
	if !knownStyles[c.Theme.Style] {
		problems = append(problems, fmt.Sprintf("theme.style: unknown style %q", c.Theme.Style))
	}
	if c.Batch.Workers < 0 {
		problems = append(problems, "batch.workers: must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}
