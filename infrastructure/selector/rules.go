// Package selector decides chart type and rendering method for a
// request. Two interchangeable strategies exist: a deterministic
// rule-based classifier and an LLM-assisted re-ranker that always falls
// back to the rules on failure.
package selector

import (
	"context"
	"sort"
	"strings"

	"github.com/deckster/chartgen/domain/chart"
)

// ruleCategory maps data-shape keywords to ranked candidate chart
// types. Earlier candidates rank higher within a category.
type ruleCategory struct {
	name       string
	keywords   []string
	candidates []chart.Type
}

// ruleTable is the fixed classification table. Categories are checked
// in order; keyword hits accumulate per candidate.
var ruleTable = []ruleCategory{
	{
		name: "temporal",
		keywords: []string{
			"trend", "over time", "timeline", "growth", "monthly", "weekly",
			"daily", "quarterly", "yearly", "annual", "forecast", "history",
		},
		candidates: []chart.Type{chart.TypeLine, chart.TypeArea, chart.TypeBar},
	},
	{
		name: "part_to_whole",
		keywords: []string{
			"share", "percentage", "proportion", "breakdown", "composition",
			"split", "allocation", "of total",
		},
		candidates: []chart.Type{chart.TypePie, chart.TypeDoughnut, chart.TypeStackedBar, chart.TypeTreemap},
	},
	{
		name: "distribution",
		keywords: []string{
			"distribution", "spread", "frequency", "density", "quartile",
			"percentile", "variance",
		},
		candidates: []chart.Type{chart.TypeHistogram, chart.TypeBox, chart.TypeViolin},
	},
	{
		name: "correlation",
		keywords: []string{
			"correlation", "relationship", "versus", " vs ", "against",
			"scatter", "depends on",
		},
		candidates: []chart.Type{chart.TypeScatter, chart.TypeBubble, chart.TypeHeatmap},
	},
	{
		name: "hierarchical",
		keywords: []string{
			"hierarchy", "nested", "drill down", "tree",
		},
		candidates: []chart.Type{chart.TypeTreemap},
	},
	{
		name: "flow",
		keywords: []string{
			"waterfall", "bridge", "funnel", "conversion", "pipeline stages",
			"cumulative effect",
		},
		candidates: []chart.Type{chart.TypeWaterfall, chart.TypeFunnel},
	},
	{
		name: "ranking",
		keywords: []string{
			"ranking", "top ", "pareto", "largest", "best performing", "leaders",
		},
		candidates: []chart.Type{chart.TypePareto, chart.TypeBar, chart.TypeHorizontalBar},
	},
	{
		name: "comparison",
		keywords: []string{
			"compare", "comparison", "by category", "by region", "by product",
			"across", "between",
		},
		candidates: []chart.Type{chart.TypeBar, chart.TypeGroupedBar, chart.TypeHorizontalBar},
	},
}

// defaultType is used when no rule matches at all.
const defaultType = chart.TypeBar

// candidate is a scored chart type during classification.
type candidate struct {
	typ   chart.Type
	score float64
}

// classify ranks candidate chart types for a description. The result is
// never empty: an unmatched description yields the default bar chart.
func classify(content string) []candidate {
	text := " " + strings.ToLower(content) + " "

	scores := make(map[chart.Type]float64)
	for _, cat := range ruleTable {
		hits := 0
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		// Earlier candidates in a category carry more weight.
		for i, typ := range cat.candidates {
			scores[typ] += float64(hits) * (1.0 - float64(i)*0.1)
		}
	}

	if len(scores) == 0 {
		return []candidate{{typ: defaultType, score: 0}}
	}

	ranked := make([]candidate, 0, len(scores))
	for typ, score := range scores {
		ranked = append(ranked, candidate{typ: typ, score: score})
	}
	// Equal scores break toward the type with the fewest required data
	// dimensions; name order keeps the sort fully deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		di, dj := ranked[i].typ.Dimensions(), ranked[j].typ.Dimensions()
		if di != dj {
			return di < dj
		}
		return ranked[i].typ < ranked[j].typ
	})
	return ranked
}

// RuleStrategy is the deterministic rule-based selection strategy.
type RuleStrategy struct{}

// NewRuleStrategy creates the rule-based strategy.
func NewRuleStrategy() *RuleStrategy {
	return &RuleStrategy{}
}

// Name returns the strategy name.
func (s *RuleStrategy) Name() string {
	return "rules"
}

// Select classifies the request description against the rule table.
// Rule selection cannot fail.
func (s *RuleStrategy) Select(_ context.Context, req chart.Request) (chart.Spec, error) {
	ranked := classify(req.Content)
	top := ranked[0]

	confidence := 0.75
	rationale := "rule-based classification"
	if top.score == 0 {
		confidence = 0.3
		rationale = "no rule matched; default bar chart"
	}
	return chart.NewSpec(top.typ, confidence, rationale), nil
}

// Candidates exposes the ranked candidates for a description, used by
// the LLM strategy to constrain re-ranking.
func (s *RuleStrategy) Candidates(content string) []chart.Type {
	ranked := classify(content)
	types := make([]chart.Type, len(ranked))
	for i, c := range ranked {
		types[i] = c.typ
	}
	return types
}
