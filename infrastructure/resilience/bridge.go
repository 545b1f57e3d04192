package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"

	"github.com/deckster/chartgen/domain/executor"
)

// BridgeConfig configures the resilient execution bridge.
type BridgeConfig struct {
	// MaxConcurrent limits concurrent script executions.
	MaxConcurrent int

	// BreakerThreshold is the number of consecutive failures before the
	// circuit opens.
	BreakerThreshold int

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration

	// DefaultTimeout bounds an execution when the caller passes none.
	DefaultTimeout time.Duration
}

// DefaultBridgeConfig returns a configuration with sensible defaults.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		MaxConcurrent:    4,
		BreakerThreshold: 5,
		BreakerTimeout:   30 * time.Second,
		DefaultTimeout:   30 * time.Second,
	}
}

// ResilientBridge wraps an execution bridge with a bulkhead and a
// circuit breaker. Interpreter crashes stay contained: concurrency is
// bounded and a failing backend trips open instead of queueing work.
type ResilientBridge struct {
	inner    executor.Bridge
	bulkhead bulkhead.Bulkhead[executor.Result]
	breaker  circuitbreaker.CircuitBreaker[executor.Result]
	timeout  time.Duration
}

// NewResilientBridge wraps inner with the configured patterns.
func NewResilientBridge(inner executor.Bridge, config BridgeConfig) *ResilientBridge {
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	threshold := config.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	return &ResilientBridge{
		inner: inner,
		bulkhead: bulkhead.New[executor.Result](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[executor.Result](circuitbreaker.Config{
			MaxRequests: uint32(maxConcurrent), // #nosec G115 -- bounds checked above
			Interval:    config.BreakerTimeout,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}),
		timeout: config.DefaultTimeout,
	}
}

// IsAvailable reports the inner bridge's availability.
func (b *ResilientBridge) IsAvailable() bool {
	return b.inner.IsAvailable()
}

// Execute runs source through the bulkhead and circuit breaker.
// Composition order: bulkhead, then breaker, then the inner bridge.
func (b *ResilientBridge) Execute(ctx context.Context, source string, timeout time.Duration) (executor.Result, error) {
	if timeout <= 0 {
		timeout = b.timeout
	}

	return b.bulkhead.Execute(ctx, func(ctx context.Context) (executor.Result, error) {
		return b.breaker.Execute(ctx, func(ctx context.Context) (executor.Result, error) {
			return b.inner.Execute(ctx, source, timeout)
		})
	})
}

// BreakerState returns the current circuit breaker state.
func (b *ResilientBridge) BreakerState() circuitbreaker.State {
	return b.breaker.State()
}
