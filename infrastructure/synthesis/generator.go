// Package synthesis resolves the dataset for a chart request: it
// validates user-supplied rows, or generates synthetic data shaped by
// the request when synthesis is permitted. Generation is seedable so
// tests can assert byte-identical datasets.
package synthesis

import (
	"math"
	"math/rand"
	"strings"

	"github.com/deckster/chartgen/domain/dataset"
)

// Pattern shapes the synthetic value sequence.
type Pattern string

const (
	PatternIncreasing Pattern = "increasing"
	PatternDecreasing Pattern = "decreasing"
	PatternCyclic     Pattern = "cyclic"
	PatternStable     Pattern = "stable"
)

// Distribution selects the base value noise distribution.
type Distribution string

const (
	DistributionUniform Distribution = "uniform"
	DistributionNormal  Distribution = "normal"
)

// GeneratorConfig configures synthetic data generation.
type GeneratorConfig struct {
	// Seed fixes the random source. The same seed and shape always
	// produce the same dataset.
	Seed int64

	// Distribution is the base noise distribution (default: uniform).
	Distribution Distribution

	// NoiseAmplitude scales noise relative to the base value
	// (default: 0.08).
	NoiseAmplitude float64

	// OutlierRate is the probability of injecting an outlier per point
	// (default: 0.05).
	OutlierRate float64
}

// Generator produces synthetic datasets.
type Generator struct {
	cfg GeneratorConfig
}

// NewGenerator creates a generator with the given configuration.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Distribution == "" {
		cfg.Distribution = DistributionUniform
	}
	if cfg.NoiseAmplitude == 0 {
		cfg.NoiseAmplitude = 0.08
	}
	if cfg.OutlierRate == 0 {
		cfg.OutlierRate = 0.05
	}
	return &Generator{cfg: cfg}
}

// Shape describes one synthetic dataset to generate.
type Shape struct {
	// Labels are the point labels, already deduplicated.
	Labels []string

	// Pattern is the trend shape.
	Pattern Pattern

	// Seasonality overlays a secondary cycle on the pattern.
	Seasonality bool

	// Base is the central value; Spread bounds variation around it.
	Base   float64
	Spread float64
}

// Generate produces one synthetic dataset for the shape. Output is
// fully determined by the generator seed and the shape.
func (g *Generator) Generate(shape Shape) dataset.Dataset {
	rng := rand.New(rand.NewSource(g.cfg.Seed))
	n := len(shape.Labels)

	points := make([]dataset.Point, n)
	for i := range points {
		base := shape.Base * patternFactor(shape.Pattern, i, n)
		if shape.Seasonality {
			base *= 1 + 0.15*math.Sin(2*math.Pi*float64(i)/float64(max(n/2, 2)))
		}

		value := base + g.noise(rng, shape.Spread)
		if rng.Float64() < g.cfg.OutlierRate {
			value *= 1.8 + rng.Float64()
		}

		points[i] = dataset.Point{
			Label:     shape.Labels[i],
			Value:     math.Round(value*100) / 100,
			Synthetic: true,
		}
	}

	return dataset.Dataset{Points: points, Source: dataset.SourceSynthetic}
}

// noise draws one noise sample scaled by the spread.
func (g *Generator) noise(rng *rand.Rand, spread float64) float64 {
	amp := spread * g.cfg.NoiseAmplitude
	if g.cfg.Distribution == DistributionNormal {
		return rng.NormFloat64() * amp
	}
	return (rng.Float64()*2 - 1) * amp
}

// patternFactor returns the trend multiplier for position i of n.
func patternFactor(p Pattern, i, n int) float64 {
	if n <= 1 {
		return 1
	}
	progress := float64(i) / float64(n-1)
	switch p {
	case PatternIncreasing:
		return 0.6 + 0.8*progress
	case PatternDecreasing:
		return 1.4 - 0.8*progress
	case PatternCyclic:
		return 1 + 0.3*math.Sin(2*math.Pi*progress)
	default:
		return 1
	}
}

// DetectPattern infers the requested trend shape from free text.
func DetectPattern(content string) Pattern {
	text := strings.ToLower(content)
	switch {
	case containsAny(text, "decline", "decrease", "drop", "falling", "shrink", "churn"):
		return PatternDecreasing
	case containsAny(text, "seasonal", "cyclic", "cycle", "periodic"):
		return PatternCyclic
	case containsAny(text, "growth", "increase", "rising", "trend", "improve"):
		return PatternIncreasing
	default:
		return PatternStable
	}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
