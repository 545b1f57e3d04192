package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/deckster/chartgen/infrastructure/logging"
	"github.com/deckster/chartgen/infrastructure/planner"
)

// Labeler produces context-appropriate labels for synthetic datasets.
// Implementations must return exactly the requested count with no
// duplicates.
type Labeler interface {
	// Labels generates n labels for the request description.
	Labels(ctx context.Context, content string, n int) []string
}

var (
	monthNames = []string{
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}
	quarterNames = []string{"Q1", "Q2", "Q3", "Q4"}
	weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	regionNames  = []string{
		"North America", "Europe", "Asia Pacific", "Latin America",
		"Middle East", "Africa",
	}
	tierNames = []string{"Free", "Starter", "Pro", "Business", "Enterprise"}
)

// RuleLabeler derives labels from domain keywords in the request.
type RuleLabeler struct{}

// NewRuleLabeler creates the rule-based labeler.
func NewRuleLabeler() *RuleLabeler {
	return &RuleLabeler{}
}

// SuggestCount proposes a natural dataset size for the description:
// twelve for monthly requests, four for quarterly, and so on.
func (l *RuleLabeler) SuggestCount(content string) int {
	text := strings.ToLower(content)
	switch {
	case strings.Contains(text, "month"):
		return 12
	case strings.Contains(text, "quarter"):
		return 4
	case containsAny(text, "weekday", "day of week", "daily"):
		return 7
	case containsAny(text, "region", "geograph"):
		return len(regionNames)
	case containsAny(text, "tier", "plan"):
		return len(tierNames)
	default:
		return 8
	}
}

// Labels implements Labeler. The result always has exactly n entries
// and no duplicates.
func (l *RuleLabeler) Labels(_ context.Context, content string, n int) []string {
	text := strings.ToLower(content)

	var base []string
	switch {
	case strings.Contains(text, "month"):
		base = monthNames
	case strings.Contains(text, "quarter"):
		base = quarterNames
	case containsAny(text, "weekday", "day of week", "daily"):
		base = weekdayNames
	case containsAny(text, "region", "geograph"):
		base = regionNames
	case containsAny(text, "tier", "plan"):
		base = tierNames
	}

	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case len(base) == 0:
			labels = append(labels, fmt.Sprintf("Item %d", i+1))
		case i < len(base):
			labels = append(labels, base[i])
		default:
			// Cycle with a numeric suffix to keep labels unique.
			labels = append(labels, fmt.Sprintf("%s %d", base[i%len(base)], i/len(base)+1))
		}
	}
	return labels
}

// LLMLabeler asks a model for domain-appropriate labels, falling back
// to the rule labeler when the response is unusable.
type LLMLabeler struct {
	provider planner.Provider
	rules    *RuleLabeler
	model    string
	timeout  time.Duration
}

// NewLLMLabeler creates an LLM-backed labeler.
func NewLLMLabeler(provider planner.Provider, model string, timeout time.Duration) *LLMLabeler {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &LLMLabeler{
		provider: provider,
		rules:    NewRuleLabeler(),
		model:    model,
		timeout:  timeout,
	}
}

// Labels implements Labeler.
func (l *LLMLabeler) Labels(ctx context.Context, content string, n int) []string {
	labels, err := l.consult(ctx, content, n)
	if err != nil {
		logging.Debug().
			Add(logging.Provider(l.provider.Name())).
			Add(logging.ErrorField(err)).
			Msg("llm labeling failed, using rule labeler")
		return l.rules.Labels(ctx, content, n)
	}
	return labels
}

// consult performs the model call and validates count and uniqueness.
func (l *LLMLabeler) consult(ctx context.Context, content string, n int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	resp, err := l.provider.Complete(ctx, planner.CompletionRequest{
		Model: l.model,
		Messages: []planner.Message{
			{Role: "system", Content: fmt.Sprintf(
				`You generate axis labels for a chart. Respond with a JSON array of exactly %d short unique strings and nothing else.`, n)},
			{Role: "user", Content: content},
		},
		Temperature: 0,
		MaxTokens:   300,
	})
	if err != nil {
		return nil, err
	}

	text := resp.Message.Content
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var labels []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &labels); err != nil {
		return nil, fmt.Errorf("unparseable labels: %v", err)
	}
	if len(labels) != n {
		return nil, fmt.Errorf("expected %d labels, got %d", n, len(labels))
	}

	seen := make(map[string]bool, n)
	for _, label := range labels {
		if label == "" || seen[label] {
			return nil, fmt.Errorf("empty or duplicate label %q", label)
		}
		seen[label] = true
	}
	return labels, nil
}
