package application

import (
	"fmt"
	"time"

	"github.com/deckster/chartgen/domain/cache"
	"github.com/deckster/chartgen/domain/config"
	"github.com/deckster/chartgen/domain/executor"
	"github.com/deckster/chartgen/domain/theme"
	infraexec "github.com/deckster/chartgen/infrastructure/executor"
	"github.com/deckster/chartgen/infrastructure/logging"
	"github.com/deckster/chartgen/infrastructure/planner"
	"github.com/deckster/chartgen/infrastructure/render"
	"github.com/deckster/chartgen/infrastructure/resilience"
	"github.com/deckster/chartgen/infrastructure/selector"
	"github.com/deckster/chartgen/infrastructure/storage/memory"
	redisstore "github.com/deckster/chartgen/infrastructure/storage/redis"
	"github.com/deckster/chartgen/infrastructure/synthesis"
	"github.com/deckster/chartgen/infrastructure/telemetry"
	themeengine "github.com/deckster/chartgen/infrastructure/theme"
)

// Build assembles a fully wired engine from a pipeline configuration.
// Every infrastructure choice the configuration expresses is resolved
// here: LLM provider, cache backend, execution bridge, and resilience
// wrappers. Callers with hand-built dependencies use NewEngine directly.
func Build(cfg config.PipelineConfig) (*Engine, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	provider := buildProvider(cfg.Provider, cfg.RateLimit)
	sel, resolver := buildSelection(provider, cfg.Provider)

	store, cleanup, err := buildCache(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}

	engine, err := NewEngine(EngineConfig{
		Selector: sel,
		Resolver: resolver,
		Themes:   themeengine.NewEngine(),
		Renderer: render.NewDispatcher(),
		Bridge:   buildBridge(cfg.Execution),
		Store:    store,
		Metrics:  telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig()),
		DefaultSeed: theme.Seed{
			Primary:   cfg.Theme.Primary,
			Secondary: cfg.Theme.Secondary,
			Tertiary:  cfg.Theme.Tertiary,
			Style:     theme.Style(cfg.Theme.Style),
		},
		CacheTTL:    cfg.Cache.TTL.Duration(),
		ExecTimeout: cfg.Execution.Timeout.Duration(),
		ExecEnabled: cfg.Execution.Enabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}

// buildProvider constructs the configured LLM provider wrapped with
// rate limiting and retry. Returns nil when no provider is configured;
// selection and labeling then run rule-based only.
func buildProvider(cfg config.ProviderConfig, rl config.RateLimitConfig) planner.Provider {
	var provider planner.Provider
	timeout := int(cfg.Timeout.Duration() / time.Second)

	switch cfg.Name {
	case "anthropic":
		provider = planner.NewAnthropicProvider(planner.AnthropicConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})
	case "openai":
		provider = planner.NewOpenAIProvider(planner.OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})
	case "ollama":
		provider = planner.NewOllamaProvider(planner.OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		})
	default:
		return nil
	}

	invokerCfg := resilience.DefaultInvokerConfig()
	if rl.Rate > 0 {
		invokerCfg.Rate = rl.Rate
	}
	if rl.Burst > 0 {
		invokerCfg.Burst = rl.Burst
	}
	if rl.RetryAttempts > 0 {
		invokerCfg.RetryMaxAttempts = rl.RetryAttempts
	}
	if d := rl.RetryDelay.Duration(); d > 0 {
		invokerCfg.RetryInitialDelay = d
	}
	return resilience.NewInvoker(provider, invokerCfg)
}

// buildSelection constructs the selector and resolver. With a provider,
// selection is LLM-assisted and labeling is LLM-backed; both degrade to
// their rule-based strategies on any provider failure.
func buildSelection(provider planner.Provider, cfg config.ProviderConfig) (*selector.Selector, *synthesis.Resolver) {
	if provider == nil {
		return selector.New(selector.NewRuleStrategy()), synthesis.NewResolver(synthesis.ResolverConfig{})
	}

	sel := selector.New(selector.NewLLMStrategy(selector.LLMStrategyConfig{
		Provider: provider,
		Model:    cfg.Model,
	}))
	resolver := synthesis.NewResolver(synthesis.ResolverConfig{
		Labeler: synthesis.NewLLMLabeler(provider, cfg.Model, cfg.Timeout.Duration()),
	})
	return sel, resolver
}

// buildCache constructs the configured cache backend. The returned
// cleanup closes backend connections and is safe to call on a nil
// backend path.
func buildCache(cfg config.CacheConfig) (cache.Cache, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case "redis":
		store, err := redisstore.NewCache(redisstore.DefaultConfig(),
			redisstore.WithAddress(cfg.RedisAddress),
			redisstore.WithPassword(cfg.RedisPassword),
			redisstore.WithDB(cfg.RedisDB),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting cache backend: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "memory", "":
		return memory.NewCache(cfg.MaxEntries), noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown cache backend %q", config.ErrValidationFailed, cfg.Backend)
	}
}

// buildBridge constructs the execution bridge. Disabled execution gets
// the unavailable bridge; an enabled one is wrapped with the bulkhead
// and circuit breaker.
func buildBridge(cfg config.ExecutionConfig) executor.Bridge {
	if !cfg.Enabled {
		return infraexec.NewUnavailableBridge()
	}

	var opts []infraexec.SubprocessOption
	if cfg.Interpreter != "" {
		opts = append(opts, infraexec.WithInterpreter(cfg.Interpreter))
	}

	bridgeCfg := resilience.DefaultBridgeConfig()
	if cfg.MaxConcurrent > 0 {
		bridgeCfg.MaxConcurrent = cfg.MaxConcurrent
	}
	if cfg.BreakerThreshold > 0 {
		bridgeCfg.BreakerThreshold = cfg.BreakerThreshold
	}
	if d := cfg.Timeout.Duration(); d > 0 {
		bridgeCfg.DefaultTimeout = d
	}
	return resilience.NewResilientBridge(infraexec.NewSubprocessBridge(opts...), bridgeCfg)
}
