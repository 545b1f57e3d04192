package selector

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/infrastructure/logging"
	"github.com/deckster/chartgen/infrastructure/planner"
)

const selectionSystemPrompt = `You select the best chart type for a data visualization request.
Respond with a single JSON object and nothing else:
{"chart_type": "<type>", "confidence": <0.0-1.0>, "reason": "<short reason>"}
The chart_type must be one of the provided candidates.`

// LLMStrategy re-ranks rule-based candidates with an LLM. Any failure
// (transport error, timeout, unparseable response, or a chart type
// outside the candidate set) falls
// back deterministically to the top rule candidate; the failure reason
// is recorded in the spec rationale and never raised to the caller.
type LLMStrategy struct {
	provider planner.Provider
	rules    *RuleStrategy
	model    string
	timeout  time.Duration
}

// LLMStrategyConfig configures the LLM-assisted strategy.
type LLMStrategyConfig struct {
	// Provider is the LLM completion provider. Required.
	Provider planner.Provider

	// Model overrides the provider's default model.
	Model string

	// Timeout bounds the selection call (default: 10s).
	Timeout time.Duration
}

// NewLLMStrategy creates an LLM-assisted strategy.
func NewLLMStrategy(cfg LLMStrategyConfig) *LLMStrategy {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &LLMStrategy{
		provider: cfg.Provider,
		rules:    NewRuleStrategy(),
		model:    cfg.Model,
		timeout:  timeout,
	}
}

// Name returns the strategy name.
func (s *LLMStrategy) Name() string {
	return "llm"
}

// llmSelection mirrors the JSON object the model is asked to emit.
type llmSelection struct {
	ChartType  string  `json:"chart_type"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Select asks the model to choose among the rule candidates.
func (s *LLMStrategy) Select(ctx context.Context, req chart.Request) (chart.Spec, error) {
	candidates := s.rules.Candidates(req.Content)

	spec, err := s.consult(ctx, req, candidates)
	if err == nil {
		return spec, nil
	}

	logging.Warn().
		Add(logging.RequestID(req.ID)).
		Add(logging.Provider(s.provider.Name())).
		Add(logging.ErrorField(err)).
		Msg("llm selection failed, using rule fallback")

	fallback, _ := s.rules.Select(ctx, req)
	fallback.Rationale = fmt.Sprintf("%s (llm fallback: %v)", fallback.Rationale, err)
	return fallback, nil
}

// consult performs the actual LLM call and parses the result.
func (s *LLMStrategy) consult(ctx context.Context, req chart.Request, candidates []chart.Type) (chart.Spec, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = string(c)
	}

	resp, err := s.provider.Complete(ctx, planner.CompletionRequest{
		Model: s.model,
		Messages: []planner.Message{
			{Role: "system", Content: selectionSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Request: %s\nCandidates: %s", req.Content, strings.Join(names, ", "))},
		},
		Temperature: 0,
		MaxTokens:   200,
	})
	if err != nil {
		return chart.Spec{}, fmt.Errorf("%w: %v", chart.ErrSelection, err)
	}

	sel, err := parseSelection(resp.Message.Content)
	if err != nil {
		return chart.Spec{}, fmt.Errorf("%w: %v", chart.ErrSelection, err)
	}

	typ, ok := chart.Parse(sel.ChartType)
	if !ok {
		return chart.Spec{}, fmt.Errorf("%w: model returned unknown type %q", chart.ErrSelection, sel.ChartType)
	}
	if !slices.Contains(candidates, typ) {
		return chart.Spec{}, fmt.Errorf("%w: model chose %q outside the candidate set", chart.ErrSelection, typ)
	}

	confidence := sel.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.5
	}

	rationale := "llm selection"
	if sel.Reason != "" {
		rationale = "llm: " + sel.Reason
	}
	return chart.NewSpec(typ, confidence, rationale), nil
}

// parseSelection extracts the JSON object from a model response,
// tolerating surrounding prose and markdown fences.
func parseSelection(content string) (llmSelection, error) {
	var sel llmSelection

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return sel, fmt.Errorf("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), &sel); err != nil {
		return sel, fmt.Errorf("unparseable selection: %v", err)
	}
	if sel.ChartType == "" {
		return sel, fmt.Errorf("selection missing chart_type")
	}
	return sel, nil
}
