// Package telemetry provides observability infrastructure including
// OpenTelemetry metrics support for the chart generation pipeline.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	generations   metric.Int64Counter
	selections    metric.Int64Counter
	fallbacks     metric.Int64Counter
	rateLimitHits metric.Int64Counter
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	rowsRejected  metric.Int64Counter
	errors        metric.Int64Counter

	// Histograms
	stageDuration      metric.Float64Histogram
	generationDuration metric.Float64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	activeGenerations metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter.
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// Attributes are default attributes to attach to all metrics.
	Attributes []attribute.KeyValue
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/deckster/chartgen",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	provider := otel.GetMeterProvider()
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.generations, err = mp.meter.Int64Counter(
		"chartgen.generations",
		metric.WithDescription("Number of chart generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return err
	}

	mp.selections, err = mp.meter.Int64Counter(
		"chartgen.selections",
		metric.WithDescription("Number of strategy selections"),
		metric.WithUnit("{selection}"),
	)
	if err != nil {
		return err
	}

	mp.fallbacks, err = mp.meter.Int64Counter(
		"chartgen.fallbacks",
		metric.WithDescription("Number of fallback renders"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return err
	}

	mp.rateLimitHits, err = mp.meter.Int64Counter(
		"chartgen.ratelimit.hits",
		metric.WithDescription("Number of rate limit hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	mp.cacheHits, err = mp.meter.Int64Counter(
		"chartgen.cache.hits",
		metric.WithDescription("Number of artifact cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	mp.cacheMisses, err = mp.meter.Int64Counter(
		"chartgen.cache.misses",
		metric.WithDescription("Number of artifact cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	mp.rowsRejected, err = mp.meter.Int64Counter(
		"chartgen.rows.rejected",
		metric.WithDescription("Number of rejected input rows"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return err
	}

	mp.errors, err = mp.meter.Int64Counter(
		"chartgen.errors",
		metric.WithDescription("Number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mp.stageDuration, err = mp.meter.Float64Histogram(
		"chartgen.stage.duration",
		metric.WithDescription("Duration of pipeline stages"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.generationDuration, err = mp.meter.Float64Histogram(
		"chartgen.generation.duration",
		metric.WithDescription("End-to-end generation duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.activeGenerations, err = mp.meter.Int64UpDownCounter(
		"chartgen.generations.active",
		metric.WithDescription("Number of in-flight generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordGeneration records a completed generation.
func (mp *MetricsProvider) RecordGeneration(ctx context.Context, chartType string, method string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("chart.type", chartType),
		attribute.String("chart.method", method),
		attribute.Bool("success", success),
	}

	mp.generations.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.generationDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if !success {
		mp.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error.type", "generation"),
			attribute.String("chart.type", chartType),
		))
	}
}

// RecordSelection records a strategy selection decision.
func (mp *MetricsProvider) RecordSelection(ctx context.Context, chartType string, confidence float64) {
	attrs := []attribute.KeyValue{
		attribute.String("chart.type", chartType),
		attribute.Float64("confidence", confidence),
	}

	mp.selections.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFallback records a fallback render.
func (mp *MetricsProvider) RecordFallback(ctx context.Context, fromType string, reason string) {
	attrs := []attribute.KeyValue{
		attribute.String("chart.type", fromType),
		attribute.String("reason", reason),
	}

	mp.fallbacks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitHit records a rate limit hit.
func (mp *MetricsProvider) RecordRateLimitHit(ctx context.Context, provider string) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
	}

	mp.rateLimitHits.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheHit records an artifact cache hit.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context) {
	mp.cacheHits.Add(ctx, 1)
}

// RecordCacheMiss records an artifact cache miss.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context) {
	mp.cacheMisses.Add(ctx, 1)
}

// RecordRowsRejected records rejected input rows.
func (mp *MetricsProvider) RecordRowsRejected(ctx context.Context, count int64) {
	mp.rowsRejected.Add(ctx, count)
}

// RecordError records an error.
func (mp *MetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
	attrs := []attribute.KeyValue{
		attribute.String("error.type", errorType),
	}
	for k, v := range details {
		attrs = append(attrs, attribute.String(k, v))
	}

	mp.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStageDuration records the duration of a pipeline stage.
func (mp *MetricsProvider) RecordStageDuration(ctx context.Context, stage string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("stage", stage),
	}

	mp.stageDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// IncrementActiveGenerations increments the in-flight generation count.
func (mp *MetricsProvider) IncrementActiveGenerations(ctx context.Context) {
	mp.activeGenerations.Add(ctx, 1)
}

// DecrementActiveGenerations decrements the in-flight generation count.
func (mp *MetricsProvider) DecrementActiveGenerations(ctx context.Context) {
	mp.activeGenerations.Add(ctx, -1)
}

// NoopMetricsProvider is a no-op metrics provider for testing or when
// metrics are disabled.
type NoopMetricsProvider struct{}

// RecordGeneration is a no-op.
func (n *NoopMetricsProvider) RecordGeneration(ctx context.Context, chartType string, method string, success bool, duration time.Duration) {
}

// RecordSelection is a no-op.
func (n *NoopMetricsProvider) RecordSelection(ctx context.Context, chartType string, confidence float64) {
}

// RecordFallback is a no-op.
func (n *NoopMetricsProvider) RecordFallback(ctx context.Context, fromType string, reason string) {}

// RecordRateLimitHit is a no-op.
func (n *NoopMetricsProvider) RecordRateLimitHit(ctx context.Context, provider string) {}

// RecordCacheHit is a no-op.
func (n *NoopMetricsProvider) RecordCacheHit(ctx context.Context) {}

// RecordCacheMiss is a no-op.
func (n *NoopMetricsProvider) RecordCacheMiss(ctx context.Context) {}

// RecordRowsRejected is a no-op.
func (n *NoopMetricsProvider) RecordRowsRejected(ctx context.Context, count int64) {}

// RecordError is a no-op.
func (n *NoopMetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
}

// RecordStageDuration is a no-op.
func (n *NoopMetricsProvider) RecordStageDuration(ctx context.Context, stage string, duration time.Duration) {
}

// IncrementActiveGenerations is a no-op.
func (n *NoopMetricsProvider) IncrementActiveGenerations(ctx context.Context) {}

// DecrementActiveGenerations is a no-op.
func (n *NoopMetricsProvider) DecrementActiveGenerations(ctx context.Context) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordGeneration(ctx context.Context, chartType string, method string, success bool, duration time.Duration)
	RecordSelection(ctx context.Context, chartType string, confidence float64)
	RecordFallback(ctx context.Context, fromType string, reason string)
	RecordRateLimitHit(ctx context.Context, provider string)
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordRowsRejected(ctx context.Context, count int64)
	RecordError(ctx context.Context, errorType string, details map[string]string)
	RecordStageDuration(ctx context.Context, stage string, duration time.Duration)
	IncrementActiveGenerations(ctx context.Context)
	DecrementActiveGenerations(ctx context.Context)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
