package selector

import (
	"context"

	"github.com/deckster/chartgen/domain/chart"
)

// Strategy is the selection contract. Implementations decide chart type
// and confidence; the rendering method is always implied by the type.
type Strategy interface {
	// Select produces a chart spec for the request.
	Select(ctx context.Context, req chart.Request) (chart.Spec, error)

	// Name returns the strategy name for logging.
	Name() string
}

// Selector is the pipeline's conductor: it honors explicit chart type
// hints, delegates free-text classification to the configured strategy,
// and guarantees a usable spec regardless of strategy failures.
type Selector struct {
	strategy Strategy
	rules    *RuleStrategy
}

// New creates a selector around the given strategy. A nil strategy
// selects purely by rules.
func New(strategy Strategy) *Selector {
	rules := NewRuleStrategy()
	if strategy == nil {
		strategy = rules
	}
	return &Selector{
		strategy: strategy,
		rules:    rules,
	}
}

// Select resolves the chart spec for a request. An explicitly requested
// valid chart type short-circuits with confidence 1.0; otherwise the
// configured strategy classifies the description. Selection never
// surfaces an error: strategy failures degrade to the rule-based
// result.
func (s *Selector) Select(ctx context.Context, req chart.Request) chart.Spec {
	if req.ExplicitType != "" {
		if typ, ok := chart.Parse(req.ExplicitType); ok {
			return chart.NewSpec(typ, 1.0, "explicitly requested")
		}
	}

	spec, err := s.strategy.Select(ctx, req)
	if err != nil {
		// Strategies are expected to self-recover; this is the last
		// line of defense.
		spec, _ = s.rules.Select(ctx, req)
		spec.Rationale = "rule fallback after strategy error: " + err.Error()
	}
	return spec
}
