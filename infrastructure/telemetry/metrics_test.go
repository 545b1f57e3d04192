package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupTestMetrics sets up a test meter provider and returns it along
// with a manual reader.
func setupTestMetrics(t *testing.T) (*metric.ManualReader, *MetricsProvider) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)

	mp := NewMetricsProvider(DefaultMetricsConfig())
	if mp.Error() != nil {
		t.Fatalf("failed to create metrics provider: %v", mp.Error())
	}

	return reader, mp
}

func collectNames(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestNewMetricsProvider(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	if mp == nil {
		t.Fatal("NewMetricsProvider returned nil")
	}
	if mp.Error() != nil {
		t.Errorf("unexpected error: %v", mp.Error())
	}
}

func TestRecordGeneration(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()
	mp.RecordGeneration(ctx, "bar", "declarative", true, 100*time.Millisecond)
	mp.RecordGeneration(ctx, "violin", "code_generated", false, 250*time.Millisecond)

	metrics := collectNames(t, reader)

	m, ok := metrics["chartgen.generations"]
	if !ok {
		t.Fatal("chartgen.generations metric not found")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("expected 2 generations, got %d", total)
	}

	// The failed generation also counts as an error.
	if _, ok := metrics["chartgen.errors"]; !ok {
		t.Error("chartgen.errors metric not found after failed generation")
	}
	if _, ok := metrics["chartgen.generation.duration"]; !ok {
		t.Error("chartgen.generation.duration metric not found")
	}
}

func TestRecordCacheHitMiss(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()
	mp.RecordCacheHit(ctx)
	mp.RecordCacheHit(ctx)
	mp.RecordCacheMiss(ctx)

	metrics := collectNames(t, reader)
	for _, name := range []string{"chartgen.cache.hits", "chartgen.cache.misses"} {
		if _, ok := metrics[name]; !ok {
			t.Errorf("%s metric not found", name)
		}
	}
}

func TestRecordFallbackAndRateLimit(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()
	mp.RecordFallback(ctx, "violin", "execution_failed")
	mp.RecordRateLimitHit(ctx, "anthropic")
	mp.RecordRowsRejected(ctx, 3)

	metrics := collectNames(t, reader)
	for _, name := range []string{"chartgen.fallbacks", "chartgen.ratelimit.hits", "chartgen.rows.rejected"} {
		if _, ok := metrics[name]; !ok {
			t.Errorf("%s metric not found", name)
		}
	}
}

func TestActiveGenerations(t *testing.T) {
	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()
	mp.IncrementActiveGenerations(ctx)
	mp.IncrementActiveGenerations(ctx)
	mp.DecrementActiveGenerations(ctx)

	metrics := collectNames(t, reader)
	m, ok := metrics["chartgen.generations.active"]
	if !ok {
		t.Fatal("chartgen.generations.active metric not found")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 1 {
		t.Errorf("active generations = %d, want 1", total)
	}
}

func TestNoopMetricsProvider(t *testing.T) {
	// The no-op provider must be safe to call without setup.
	var mp NoopMetricsProvider
	ctx := context.Background()
	mp.RecordGeneration(ctx, "bar", "declarative", true, time.Second)
	mp.RecordStageDuration(ctx, "render", time.Millisecond)
	mp.IncrementActiveGenerations(ctx)
	mp.DecrementActiveGenerations(ctx)
}
