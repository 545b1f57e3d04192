package synthesis

import (
	"context"
	"fmt"
	"math"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/infrastructure/logging"
)

// Resolver implements the data provider contract: user rows first,
// synthesis second, explicit failure when neither is possible.
type Resolver struct {
	generator *Generator
	labeler   Labeler
	ruleLabel *RuleLabeler
}

// ResolverConfig configures the resolver.
type ResolverConfig struct {
	// Generator produces synthetic values. Required.
	Generator *Generator

	// Labeler produces synthetic labels. Defaults to the rule labeler.
	Labeler Labeler
}

// NewResolver creates a resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	ruleLabel := NewRuleLabeler()
	labeler := cfg.Labeler
	if labeler == nil {
		labeler = ruleLabel
	}
	generator := cfg.Generator
	if generator == nil {
		generator = NewGenerator(GeneratorConfig{})
	}
	return &Resolver{
		generator: generator,
		labeler:   labeler,
		ruleLabel: ruleLabel,
	}
}

// Resolve produces the dataset for a request. User-supplied rows take
// priority; malformed rows are rejected individually and reported, but
// only an empty survivor set fails the request. With no user data,
// synthesis runs when permitted, otherwise the request fails with a
// clear no-data error.
func (r *Resolver) Resolve(ctx context.Context, req chart.Request, spec chart.Spec) (dataset.Dataset, []dataset.RowError, error) {
	if len(req.Data) > 0 {
		clean, rowErrs := ValidateRows(req.Data)
		if len(clean) > 0 {
			logging.Debug().
				Add(logging.RequestID(req.ID)).
				Add(logging.Rows(len(clean))).
				Add(logging.Int("rejected", len(rowErrs))).
				Msg("using user-supplied data")
			return dataset.Dataset{Points: clean, Source: dataset.SourceUser}, rowErrs, nil
		}
		if !req.UseSyntheticData {
			return dataset.Dataset{}, rowErrs, fmt.Errorf("%w: all %d data rows were rejected", chart.ErrNoData, len(req.Data))
		}
		// Fall through to synthesis with the row errors preserved.
		ds, err := r.synthesize(ctx, req, spec)
		return ds, rowErrs, err
	}

	if !req.UseSyntheticData {
		return dataset.Dataset{}, nil, fmt.Errorf("%w: synthetic data disabled and no rows provided", chart.ErrNoData)
	}

	ds, err := r.synthesize(ctx, req, spec)
	return ds, nil, err
}

// synthesize builds the synthetic dataset shaped by the request text.
func (r *Resolver) synthesize(ctx context.Context, req chart.Request, spec chart.Spec) (dataset.Dataset, error) {
	count := r.ruleLabel.SuggestCount(req.Content)
	labels := r.labeler.Labels(ctx, req.Content, count)
	if len(labels) != count {
		return dataset.Dataset{}, fmt.Errorf("%w: labeler produced %d labels, want %d", chart.ErrSynthesis, len(labels), count)
	}

	hints := ExtractHints(req.Content)
	shape := Shape{
		Labels:      labels,
		Pattern:     DetectPattern(req.Content),
		Seasonality: containsAny(req.Content, "seasonal", "seasonality"),
		Base:        hints.Base,
		Spread:      hints.Spread,
	}

	ds := r.generator.Generate(shape)
	if hints.Percent {
		clampPercent(ds.Points)
	}

	logging.Debug().
		Add(logging.RequestID(req.ID)).
		Add(logging.ChartType(spec.Type)).
		Add(logging.Rows(ds.Len())).
		Msg("synthesized dataset")
	return ds, nil
}

// clampPercent bounds percentage values to [0, 100].
func clampPercent(points []dataset.Point) {
	for i := range points {
		points[i].Value = math.Min(100, math.Max(0, points[i].Value))
	}
}
