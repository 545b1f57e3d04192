package application

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/domain/executor"
	"github.com/deckster/chartgen/domain/theme"
	infraexec "github.com/deckster/chartgen/infrastructure/executor"
	"github.com/deckster/chartgen/infrastructure/storage/memory"
)

// stubBridge is a scriptable execution bridge for orchestration tests.
type stubBridge struct {
	calls atomic.Int32
	fail  bool
}

func (b *stubBridge) IsAvailable() bool { return true }

func (b *stubBridge) Execute(ctx context.Context, source string, timeout time.Duration) (executor.Result, error) {
	b.calls.Add(1)
	if b.fail {
		return executor.Result{}, executor.ErrExecutionFailed
	}
	return executor.Result{
		Image:    []byte("png-bytes"),
		Encoding: "png",
		Executed: true,
	}, nil
}

func newTestEngine(t *testing.T, config EngineConfig) *Engine {
	t.Helper()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestGenerate(t *testing.T) {
	t.Run("synthetic_monthly_trend", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		artifact, err := engine.Generate(context.Background(), chart.Request{
			Content:          "monthly revenue trend for 2024",
			UseSyntheticData: true,
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		temporal := map[chart.Type]bool{chart.TypeLine: true, chart.TypeArea: true, chart.TypeBar: true}
		if !temporal[artifact.Type] {
			t.Errorf("chart type = %s, want a temporal type", artifact.Type)
		}
		if got := artifact.Dataset.Len(); got != 12 {
			t.Errorf("dataset has %d points, want 12 for a monthly request", got)
		}
		if artifact.Dataset.Source != dataset.SourceSynthetic {
			t.Errorf("source = %s, want synthetic", artifact.Dataset.Source)
		}
		if artifact.Content() == "" {
			t.Error("artifact content should not be empty")
		}
	})

	t.Run("user_data_takes_priority", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		artifact, err := engine.Generate(context.Background(), chart.Request{
			Content: "quarterly sales",
			Data: []dataset.Point{
				{Label: "Q1", Value: 45000},
				{Label: "Q2", Value: 52000},
				{Label: "Q3", Value: 48000},
				{Label: "Q4", Value: 61000},
			},
			UseSyntheticData: false,
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if artifact.Dataset.Source != dataset.SourceUser {
			t.Errorf("source = %s, want user", artifact.Dataset.Source)
		}
		want := []float64{45000, 52000, 48000, 61000}
		got := artifact.Dataset.Values()
		if len(got) != len(want) {
			t.Fatalf("got %d values, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("values[%d] = %g, want %g", i, got[i], want[i])
			}
		}
		if artifact.Statistics.Max != 61000 {
			t.Errorf("statistics.max = %g, want 61000", artifact.Statistics.Max)
		}
	})

	t.Run("unavailable_backend_returns_source_only", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{
			Bridge:      infraexec.NewUnavailableBridge(),
			ExecEnabled: true,
		})

		artifact, err := engine.Generate(context.Background(), chart.Request{
			Content:          "engagement scatter",
			ExplicitType:     "scatter",
			UseSyntheticData: true,
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if artifact.Executed {
			t.Error("artifact should not be marked executed")
		}
		if artifact.SourceCode == "" {
			t.Error("artifact should carry the unexecuted source code")
		}
		if len(artifact.Image) != 0 {
			t.Error("no image should be present without execution")
		}
	})

	t.Run("execution_success_attaches_image", func(t *testing.T) {
		bridge := &stubBridge{}
		engine := newTestEngine(t, EngineConfig{
			Bridge:      bridge,
			ExecEnabled: true,
		})

		artifact, err := engine.Generate(context.Background(), chart.Request{
			Content:          "engagement scatter",
			ExplicitType:     "scatter",
			UseSyntheticData: true,
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if !artifact.Executed {
			t.Error("artifact should be marked executed")
		}
		if string(artifact.Image) != "png-bytes" {
			t.Errorf("image = %q", artifact.Image)
		}
		if artifact.SourceCode == "" {
			t.Error("source code should be retained after execution")
		}
		if got := bridge.calls.Load(); got != 1 {
			t.Errorf("bridge called %d times, want 1", got)
		}
	})

	t.Run("execution_failure_falls_back_to_bar", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{
			Bridge:      &stubBridge{fail: true},
			ExecEnabled: true,
		})

		artifact, err := engine.Generate(context.Background(), chart.Request{
			Content:          "engagement scatter",
			ExplicitType:     "scatter",
			UseSyntheticData: true,
		})
		if err != nil {
			t.Fatalf("fallback should succeed, got error %v", err)
		}

		if artifact.Type != chart.TypeBar {
			t.Errorf("fallback type = %s, want bar", artifact.Type)
		}
		if artifact.Method != chart.MethodDeclarative {
			t.Errorf("fallback method = %s, want declarative", artifact.Method)
		}
		if artifact.Markup == "" {
			t.Error("fallback should produce declarative markup")
		}
	})

	t.Run("no_data_and_no_synthesis_fails", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		_, err := engine.Generate(context.Background(), chart.Request{
			Content:          "quarterly sales",
			UseSyntheticData: false,
		})
		if !errors.Is(err, chart.ErrNoData) {
			t.Errorf("error = %v, want ErrNoData", err)
		}
	})

	t.Run("malformed_rows_are_reported_not_fatal", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		body := []byte(`{
			"content": "quarterly sales",
			"use_synthetic_data": false,
			"data": [
				{"label": "Q1", "value": 100},
				{"label": "Q2"},
				{"label": "Q3", "value": 300},
				{"label": "Q4"},
				{"label": "Q5", "value": 500}
			]
		}`)
		parsed, err := ParseGenerateRequest(body)
		if err != nil {
			t.Fatalf("ParseGenerateRequest() error = %v", err)
		}

		artifact, err := engine.Generate(context.Background(), parsed.ToDomain())
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if got := artifact.Dataset.Len(); got != 3 {
			t.Errorf("dataset has %d points, want 3 surviving rows", got)
		}
		if got := len(artifact.RowErrors); got != 2 {
			t.Errorf("got %d row errors, want 2", got)
		}
	})

	t.Run("invalid_explicit_type_is_a_validation_error", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		_, err := engine.Generate(context.Background(), chart.Request{
			Content:          "sales",
			ExplicitType:     "gantt",
			UseSyntheticData: true,
		})
		if !errors.Is(err, chart.ErrInvalidType) {
			t.Errorf("error = %v, want ErrInvalidType", err)
		}
	})
}

func TestGenerateCaching(t *testing.T) {
	t.Run("identical_request_is_served_from_cache", func(t *testing.T) {
		bridge := &stubBridge{}
		engine := newTestEngine(t, EngineConfig{
			Bridge:      bridge,
			Store:       memory.NewCache(16),
			ExecEnabled: true,
			CacheTTL:    time.Minute,
		})

		req := chart.Request{
			Content:          "engagement scatter",
			ExplicitType:     "scatter",
			UseSyntheticData: true,
		}

		first, err := engine.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("first Generate() error = %v", err)
		}
		if first.Cached {
			t.Error("first artifact should not be cached")
		}

		second, err := engine.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("second Generate() error = %v", err)
		}
		if !second.Cached {
			t.Error("second artifact should be served from cache")
		}
		if second.SourceCode != first.SourceCode {
			t.Error("cached artifact should carry identical content")
		}
		if got := bridge.calls.Load(); got != 1 {
			t.Errorf("bridge called %d times, want 1 (cache hit skips execution)", got)
		}
	})

	t.Run("theme_changes_the_cache_key", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{
			Store:    memory.NewCache(16),
			CacheTTL: time.Minute,
		})

		base := chart.Request{Content: "quarterly sales", UseSyntheticData: true}
		if _, err := engine.Generate(context.Background(), base); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		themed := base
		themed.Theme = &theme.Seed{Primary: "#ff0000", Style: theme.StyleMinimal}
		artifact, err := engine.Generate(context.Background(), themed)
		if err != nil {
			t.Fatalf("themed Generate() error = %v", err)
		}
		if artifact.Cached {
			t.Error("a different theme seed must not hit the cache")
		}
	})

	t.Run("disabled_cache_still_generates", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		req := chart.Request{Content: "quarterly sales", UseSyntheticData: true}
		a, err := engine.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		b, err := engine.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if a.Cached || b.Cached {
			t.Error("no artifact should be cached without a store")
		}
		if a.Content() != b.Content() {
			t.Error("output must be identical with caching disabled")
		}
	})
}

func TestGenerateBatch(t *testing.T) {
	t.Run("partial_failure_is_isolated", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		requests := []chart.Request{
			{Content: "monthly revenue trend", UseSyntheticData: true},
			{Content: "quarterly sales", UseSyntheticData: false}, // no data, no synthesis
			{Content: "market share breakdown", UseSyntheticData: true},
		}

		result := engine.GenerateBatch(context.Background(), requests, 2)
		if got := len(result.Items); got != 3 {
			t.Fatalf("got %d items, want 3", got)
		}
		if result.Succeeded() != 2 || result.Failed() != 1 {
			t.Errorf("succeeded=%d failed=%d, want 2/1", result.Succeeded(), result.Failed())
		}
		if !errors.Is(result.Items[1].Err, chart.ErrNoData) {
			t.Errorf("items[1].Err = %v, want ErrNoData", result.Items[1].Err)
		}
		for _, i := range []int{0, 2} {
			if result.Items[i].Err != nil {
				t.Errorf("items[%d] failed: %v", i, result.Items[i].Err)
			}
			if result.Items[i].Artifact.Content() == "" {
				t.Errorf("items[%d] has empty content", i)
			}
		}
	})

	t.Run("results_keep_input_order", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		requests := make([]chart.Request, 6)
		for i := range requests {
			requests[i] = chart.Request{Content: "monthly revenue trend", UseSyntheticData: true}
		}

		result := engine.GenerateBatch(context.Background(), requests, 3)
		for i, item := range result.Items {
			if item.Index != i {
				t.Errorf("items[%d].Index = %d", i, item.Index)
			}
		}
	})

	t.Run("cancelled_context_stops_dispatch", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		requests := []chart.Request{
			{Content: "monthly revenue trend", UseSyntheticData: true},
			{Content: "monthly revenue trend", UseSyntheticData: true},
		}
		result := engine.GenerateBatch(ctx, requests, 1)
		if got := len(result.Items); got != 2 {
			t.Fatalf("got %d items, want 2", got)
		}
	})
}

func TestResponseMapping(t *testing.T) {
	t.Run("synthetic_data_defaults_to_true", func(t *testing.T) {
		parsed, err := ParseGenerateRequest([]byte(`{"content": "sales"}`))
		if err != nil {
			t.Fatalf("ParseGenerateRequest() error = %v", err)
		}
		if req := parsed.ToDomain(); !req.UseSyntheticData {
			t.Error("UseSyntheticData should default to true")
		}
	})

	t.Run("explicit_false_is_preserved", func(t *testing.T) {
		parsed, err := ParseGenerateRequest([]byte(`{"content": "sales", "use_synthetic_data": false}`))
		if err != nil {
			t.Fatalf("ParseGenerateRequest() error = %v", err)
		}
		if req := parsed.ToDomain(); req.UseSyntheticData {
			t.Error("explicit use_synthetic_data=false should be preserved")
		}
	})

	t.Run("malformed_body_is_a_validation_error", func(t *testing.T) {
		_, err := ParseGenerateRequest([]byte(`{"content":`))
		if !errors.Is(err, chart.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("artifact_maps_to_response", func(t *testing.T) {
		engine := newTestEngine(t, EngineConfig{})

		artifact, err := engine.Generate(context.Background(), chart.Request{
			Content:          "monthly revenue trend",
			UseSyntheticData: true,
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		resp := NewGenerateResponse(artifact)
		if !resp.Success {
			t.Error("response should be successful")
		}
		if resp.Chart == "" {
			t.Error("response chart payload should not be empty")
		}
		if got := len(resp.Data.Labels); got != len(resp.Data.Values) {
			t.Errorf("labels/values length mismatch: %d vs %d", got, len(resp.Data.Values))
		}
		if resp.Metadata.DataSource != "synthetic" {
			t.Errorf("data_source = %s, want synthetic", resp.Metadata.DataSource)
		}
		if resp.Metadata.ChartType == "" {
			t.Error("metadata chart type should be set")
		}
	})

	t.Run("error_maps_to_failure_shape", func(t *testing.T) {
		resp := NewErrorResponse(chart.ErrNoData)
		if resp.Success {
			t.Error("error response should not be successful")
		}
		if !strings.Contains(resp.Error, "no data") {
			t.Errorf("error = %q, want the error category", resp.Error)
		}
	})
}
