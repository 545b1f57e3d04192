package dataset

import (
	"fmt"
	"math"
)

// Trend is the overall direction of a dataset.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// slopeEpsilon bounds the slope magnitude treated as stable, relative
// to the mean absolute value of the dataset.
const slopeEpsilon = 0.01

// Insights summarizes what the final dataset shows. Insights are always
// computed from the dataset actually rendered, never from a draft.
type Insights struct {
	Trend    Trend      `json:"trend"`
	Stats    Statistics `json:"statistics"`
	Outliers []int      `json:"outliers,omitempty"`
}

// Analyze computes insights for the dataset's primary points.
func Analyze(d Dataset) Insights {
	in := Insights{
		Trend: TrendStable,
		Stats: d.Stats(),
	}
	if len(d.Points) < 2 {
		return in
	}

	in.Trend = trendOf(d.Values(), in.Stats.Mean)
	in.Outliers = outliers(d.Values(), in.Stats.Mean)
	return in
}

// trendOf classifies direction via the sign of the linear regression
// slope over index positions.
func trendOf(values []float64, mean float64) Trend {
	n := float64(len(values))
	xMean := (n - 1) / 2

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - mean)
		den += dx * dx
	}
	if den == 0 {
		return TrendStable
	}

	slope := num / den
	scale := math.Abs(mean)
	if scale == 0 {
		scale = 1
	}
	switch {
	case slope > slopeEpsilon*scale:
		return TrendIncreasing
	case slope < -slopeEpsilon*scale:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// outliers returns the indices of values beyond two standard deviations
// from the mean.
func outliers(values []float64, mean float64) []int {
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return nil
	}

	var out []int
	for i, v := range values {
		if math.Abs(v-mean) > 2*stddev {
			out = append(out, i)
		}
	}
	return out
}

// Describe renders the insights as human-readable strings for response
// metadata.
func (in Insights) Describe() []string {
	descs := []string{
		fmt.Sprintf("trend is %s", in.Trend),
		fmt.Sprintf("values range from %g to %g with mean %.2f", in.Stats.Min, in.Stats.Max, in.Stats.Mean),
	}
	if len(in.Outliers) > 0 {
		descs = append(descs, fmt.Sprintf("%d outlier(s) beyond 2 standard deviations", len(in.Outliers)))
	}
	return descs
}
