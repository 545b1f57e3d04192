// Package resilience wraps the pipeline's two unreliable edges with
// fortify patterns: LLM completions get rate limiting plus retry, and
// the execution bridge gets a bulkhead plus a circuit breaker.
package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/infrastructure/logging"
	"github.com/deckster/chartgen/infrastructure/planner"
)

// InvokerConfig configures the resilient LLM invoker.
type InvokerConfig struct {
	// Rate is the number of completions allowed per interval.
	Rate int

	// Burst is the token bucket capacity.
	Burst int

	// RetryMaxAttempts is the maximum number of completion attempts.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64

	// Timeout bounds a single completion including retries.
	Timeout time.Duration
}

// DefaultInvokerConfig returns a configuration with sensible defaults.
func DefaultInvokerConfig() InvokerConfig {
	return InvokerConfig{
		Rate:                   30,
		Burst:                  10,
		RetryMaxAttempts:       3,
		RetryInitialDelay:      200 * time.Millisecond,
		RetryBackoffMultiplier: 2.0,
		Timeout:                30 * time.Second,
	}
}

// Invoker wraps a planner provider with rate limiting and retry. It
// satisfies planner.Provider so selectors and labelers can use it
// without knowing about the resilience layer.
type Invoker struct {
	provider planner.Provider
	limiter  ratelimit.RateLimiter
	retry    retry.Retry[planner.CompletionResponse]
	timeout  time.Duration
}

// NewInvoker wraps provider with the configured resilience patterns.
func NewInvoker(provider planner.Provider, config InvokerConfig) *Invoker {
	rate := config.Rate
	if rate <= 0 {
		rate = 30
	}
	burst := config.Burst
	if burst <= 0 {
		burst = rate
	}

	return &Invoker{
		provider: provider,
		limiter: ratelimit.New(&ratelimit.Config{
			Rate:  rate,
			Burst: burst,
		}),
		retry: retry.New[planner.CompletionResponse](retry.Config{
			MaxAttempts:   config.RetryMaxAttempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
		timeout: config.Timeout,
	}
}

// Name returns the wrapped provider's name.
func (i *Invoker) Name() string {
	return i.provider.Name()
}

// Complete runs a completion through the rate limiter and retry policy.
// Calls above the budget are spaced, not failed: the limiter waits for
// capacity within the invoker timeout, and only an exhausted wait
// surfaces as chart.ErrRateLimited without touching the provider.
func (i *Invoker) Complete(ctx context.Context, req planner.CompletionRequest) (planner.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	if err := i.limiter.Wait(ctx, i.provider.Name()); err != nil {
		logging.Warn().
			Add(logging.Provider(i.provider.Name())).
			Add(logging.ErrorField(err)).
			Msg("completion rate limit exhausted")
		return planner.CompletionResponse{}, fmt.Errorf("%w: provider %s", chart.ErrRateLimited, i.provider.Name())
	}

	return i.retry.Do(ctx, func(ctx context.Context) (planner.CompletionResponse, error) {
		return i.provider.Complete(ctx, req)
	})
}
