// Package application provides the orchestration layer of the chart
// generation pipeline: single-request generation, caching, fallback
// handling, and batch processing.
package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/deckster/chartgen/domain/cache"
	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/domain/dataset"
	"github.com/deckster/chartgen/domain/executor"
	"github.com/deckster/chartgen/domain/pipeline"
	"github.com/deckster/chartgen/domain/theme"
	infraexec "github.com/deckster/chartgen/infrastructure/executor"
	"github.com/deckster/chartgen/infrastructure/logging"
	"github.com/deckster/chartgen/infrastructure/render"
	"github.com/deckster/chartgen/infrastructure/selector"
	"github.com/deckster/chartgen/infrastructure/statemachine"
	"github.com/deckster/chartgen/infrastructure/synthesis"
	"github.com/deckster/chartgen/infrastructure/telemetry"
	themeengine "github.com/deckster/chartgen/infrastructure/theme"
)

// fallbackType is the chart type used when a selected type fails to
// render or execute. Bar is declarative, so the fallback never needs
// the execution bridge.
const fallbackType = chart.TypeBar

// Engine is the orchestration service for chart generation.
type Engine struct {
	selector *selector.Selector
	resolver *synthesis.Resolver
	themes   *themeengine.Engine
	renderer *render.Dispatcher
	bridge   executor.Bridge
	store    cache.Cache
	metrics  telemetry.Metrics
	machine  *statekit.MachineConfig[*statemachine.Context]

	defaultSeed theme.Seed
	cacheTTL    time.Duration
	execTimeout time.Duration
	execEnabled bool
}

// EngineConfig contains configuration for the engine.
type EngineConfig struct {
	// Selector resolves chart specs. Defaults to rule-based selection.
	Selector *selector.Selector
	// Resolver produces datasets. Defaults to rule-based synthesis.
	Resolver *synthesis.Resolver
	// Themes derives visual themes. Required-with-default.
	Themes *themeengine.Engine
	// Renderer dispatches to the renderer families.
	Renderer *render.Dispatcher
	// Bridge executes generated code. Defaults to the unavailable bridge.
	Bridge executor.Bridge
	// Store caches serialized artifacts. Nil disables caching.
	Store cache.Cache
	// Metrics records pipeline telemetry. Defaults to no-op.
	Metrics telemetry.Metrics
	// DefaultSeed is the theme seed used when a request carries none.
	DefaultSeed theme.Seed
	// CacheTTL bounds cached artifact freshness.
	CacheTTL time.Duration
	// ExecTimeout bounds a single code execution.
	ExecTimeout time.Duration
	// ExecEnabled toggles out-of-process execution.
	ExecEnabled bool
}

// NewEngine creates an engine with the given configuration.
func NewEngine(config EngineConfig) (*Engine, error) {
	machine, err := statemachine.NewGenerationMachine()
	if err != nil {
		return nil, fmt.Errorf("building generation machine: %w", err)
	}

	e := &Engine{
		selector:    config.Selector,
		resolver:    config.Resolver,
		themes:      config.Themes,
		renderer:    config.Renderer,
		bridge:      config.Bridge,
		store:       config.Store,
		metrics:     config.Metrics,
		machine:     machine,
		defaultSeed: config.DefaultSeed,
		cacheTTL:    config.CacheTTL,
		execTimeout: config.ExecTimeout,
		execEnabled: config.ExecEnabled,
	}

	if e.selector == nil {
		e.selector = selector.New(nil)
	}
	if e.resolver == nil {
		e.resolver = synthesis.NewResolver(synthesis.ResolverConfig{})
	}
	if e.themes == nil {
		e.themes = themeengine.NewEngine()
	}
	if e.renderer == nil {
		e.renderer = render.NewDispatcher()
	}
	if e.bridge == nil {
		e.bridge = infraexec.NewUnavailableBridge()
	}
	if e.metrics == nil {
		e.metrics = &telemetry.NoopMetricsProvider{}
	}
	if e.execTimeout <= 0 {
		e.execTimeout = 30 * time.Second
	}

	return e, nil
}

// Generate runs one request through the full pipeline and returns the
// artifact. The cache is consulted first; identical requests within the
// TTL return the stored artifact without touching any stage.
func (e *Engine) Generate(ctx context.Context, req chart.Request) (chart.Artifact, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	start := time.Now()

	e.metrics.IncrementActiveGenerations(ctx)
	defer e.metrics.DecrementActiveGenerations(ctx)

	if err := req.Validate(); err != nil {
		e.metrics.RecordError(ctx, "validation", nil)
		return chart.Artifact{}, err
	}

	key := e.cacheKey(req)
	if cached, ok := e.cacheLookup(ctx, key); ok {
		logging.Debug().
			Add(logging.RequestID(req.ID)).
			Add(logging.Cached(true)).
			Msg("serving cached artifact")
		e.metrics.RecordCacheHit(ctx)
		return cached, nil
	}
	e.metrics.RecordCacheMiss(ctx)

	run := statemachine.NewInterpreter(e.machine, statemachine.NewContext(req.ID))
	run.Start()
	defer run.Stop()

	artifact, err := e.generate(ctx, req, run)
	if err != nil {
		run.Advance(pipeline.StageFailed, err.Error())
		e.metrics.RecordGeneration(ctx, string(artifact.Type), string(artifact.Method), false, time.Since(start))
		return chart.Artifact{}, err
	}

	run.Advance(pipeline.StageDone, "")
	e.cacheStore(ctx, key, artifact)
	e.metrics.RecordGeneration(ctx, string(artifact.Type), string(artifact.Method), true, time.Since(start))

	logging.Info().
		Add(logging.RequestID(req.ID)).
		Add(logging.ChartType(artifact.Type)).
		Add(logging.Method(artifact.Method)).
		Add(logging.DataSource(artifact.Dataset.Source)).
		Add(logging.Executed(artifact.Executed)).
		Add(logging.Duration(time.Since(start))).
		Msg("chart generated")
	return artifact, nil
}

// generate runs the pipeline stages after cache miss.
func (e *Engine) generate(ctx context.Context, req chart.Request, run *statemachine.Interpreter) (chart.Artifact, error) {
	// Selection never fails; degraded selections carry their rationale.
	run.Advance(pipeline.StageSelecting, "")
	selectStart := time.Now()
	spec := e.selector.Select(ctx, req)
	e.metrics.RecordStageDuration(ctx, string(pipeline.StageSelecting), time.Since(selectStart))
	e.metrics.RecordSelection(ctx, string(spec.Type), spec.Confidence)

	logging.Debug().
		Add(logging.RequestID(req.ID)).
		Add(logging.ChartType(spec.Type)).
		Add(logging.Confidence(spec.Confidence)).
		Add(logging.Reason(spec.Rationale)).
		Msg("strategy selected")

	// Data resolution failures abort: there is nothing to draw.
	run.Advance(pipeline.StageResolving, "")
	resolveStart := time.Now()
	ds, rowErrs, err := e.resolver.Resolve(ctx, req, spec)
	e.metrics.RecordStageDuration(ctx, string(pipeline.StageResolving), time.Since(resolveStart))
	if len(rowErrs) > 0 {
		e.metrics.RecordRowsRejected(ctx, int64(len(rowErrs)))
	}
	if err != nil {
		return chart.Artifact{}, err
	}

	built, err := e.themes.Build(e.seedFor(req))
	if err != nil {
		return chart.Artifact{}, fmt.Errorf("%w: %v", chart.ErrValidation, err)
	}

	artifact, err := e.renderAndExecute(ctx, req, spec, ds, built, run)
	if err != nil {
		return chart.Artifact{}, err
	}

	run.Advance(pipeline.StageAssembling, "")
	insights := dataset.Analyze(ds)
	artifact.Dataset = ds
	artifact.Statistics = insights.Stats
	artifact.Insights = insights.Describe()
	artifact.RowErrors = rowErrs
	artifact.ThemeApplied = string(built.Seed().Style)
	artifact.CreatedAt = time.Now()
	return artifact, nil
}

// renderAndExecute renders the spec and, for code-generated charts,
// runs the bridge. Any render or execution failure triggers a single
// fallback render with the default bar type; only a fallback failure
// surfaces as an error.
func (e *Engine) renderAndExecute(ctx context.Context, req chart.Request, spec chart.Spec, ds dataset.Dataset, th theme.Theme, run *statemachine.Interpreter) (chart.Artifact, error) {
	run.Advance(pipeline.StageRendering, "")
	renderStart := time.Now()
	content, err := e.renderer.Render(spec, ds, th, req.ResolvedTitle())
	e.metrics.RecordStageDuration(ctx, string(pipeline.StageRendering), time.Since(renderStart))
	if err != nil {
		return e.fallback(ctx, req, spec, ds, th, run, fmt.Sprintf("render failed: %v", err))
	}

	artifact := chart.Artifact{
		Type:   spec.Type,
		Method: spec.Method,
	}
	if spec.Method == chart.MethodDeclarative {
		artifact.Markup = content
		return artifact, nil
	}

	artifact.SourceCode = content
	if !e.execEnabled || !e.bridge.IsAvailable() {
		// Source-only artifact: the caller renders the code elsewhere.
		return artifact, nil
	}

	run.Advance(pipeline.StageExecuting, "")
	execStart := time.Now()
	result, err := e.bridge.Execute(ctx, content, e.execTimeout)
	e.metrics.RecordStageDuration(ctx, string(pipeline.StageExecuting), time.Since(execStart))
	if err != nil {
		return e.fallback(ctx, req, spec, ds, th, run, fmt.Sprintf("execution failed: %v", err))
	}

	artifact.Executed = result.Executed
	artifact.Image = result.Image
	artifact.ImageEncoding = result.Encoding
	return artifact, nil
}

// fallback renders the default bar chart after a failure. The fallback
// is declarative, so it cannot loop back into execution.
func (e *Engine) fallback(ctx context.Context, req chart.Request, failed chart.Spec, ds dataset.Dataset, th theme.Theme, run *statemachine.Interpreter, reason string) (chart.Artifact, error) {
	if failed.Type == fallbackType {
		return chart.Artifact{Type: failed.Type, Method: failed.Method}, fmt.Errorf("%w: %s", chart.ErrGeneration, reason)
	}

	logging.Warn().
		Add(logging.RequestID(req.ID)).
		Add(logging.ChartType(failed.Type)).
		Add(logging.Reason(reason)).
		Msg("falling back to bar chart")
	e.metrics.RecordFallback(ctx, string(failed.Type), reason)

	run.Advance(pipeline.StageRendering, reason)
	spec := chart.NewSpec(fallbackType, failed.Confidence, fmt.Sprintf("fallback from %s: %s", failed.Type, reason))
	content, err := e.renderer.Render(spec, ds, th, req.ResolvedTitle())
	if err != nil {
		return chart.Artifact{}, fmt.Errorf("%w: fallback render failed: %v", chart.ErrGeneration, err)
	}

	return chart.Artifact{
		Type:   spec.Type,
		Method: spec.Method,
		Markup: content,
	}, nil
}

// seedFor resolves the theme seed for a request.
func (e *Engine) seedFor(req chart.Request) theme.Seed {
	if req.Theme != nil {
		return *req.Theme
	}
	return e.defaultSeed
}

// cacheKey derives a stable key from everything that influences the
// artifact: description, type hint, title, data rows, synthesis
// permission, and theme seed.
func (e *Engine) cacheKey(req chart.Request) string {
	h := sha256.New()
	h.Write([]byte(req.Content))
	h.Write([]byte{0})
	h.Write([]byte(req.ExplicitType))
	h.Write([]byte{0})
	h.Write([]byte(req.Title))
	h.Write([]byte{0})
	if req.UseSyntheticData {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	rows := make([]string, len(req.Data))
	for i, p := range req.Data {
		rows[i] = fmt.Sprintf("%s|%g|%s", p.Label, p.Value, p.Category)
	}
	sort.Strings(rows)
	for _, row := range rows {
		h.Write([]byte(row))
		h.Write([]byte{0})
	}

	seed := e.seedFor(req)
	h.Write([]byte(seed.CacheKey()))
	return hex.EncodeToString(h.Sum(nil))
}

// cacheLookup fetches and deserializes a cached artifact. Cache errors
// degrade to a miss; the cache is an optimization, never a dependency.
func (e *Engine) cacheLookup(ctx context.Context, key string) (chart.Artifact, bool) {
	if e.store == nil {
		return chart.Artifact{}, false
	}

	data, ok, err := e.store.Get(ctx, key)
	if err != nil || !ok {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn().Add(logging.ErrorField(err)).Msg("cache lookup failed")
		}
		return chart.Artifact{}, false
	}

	var stored cachedArtifact
	if err := json.Unmarshal(data, &stored); err != nil {
		logging.Warn().Add(logging.ErrorField(err)).Msg("cached artifact is corrupt")
		return chart.Artifact{}, false
	}

	artifact := stored.Artifact
	artifact.Dataset = stored.Dataset
	artifact.Cached = true
	return artifact, true
}

// cacheStore serializes and stores an artifact. Failures are logged and
// ignored.
func (e *Engine) cacheStore(ctx context.Context, key string, artifact chart.Artifact) {
	if e.store == nil {
		return
	}

	data, err := json.Marshal(cachedArtifact{Artifact: artifact, Dataset: artifact.Dataset})
	if err != nil {
		logging.Warn().Add(logging.ErrorField(err)).Msg("artifact serialization failed")
		return
	}
	if err := e.store.Set(ctx, key, data, cache.SetOptions{TTL: e.cacheTTL}); err != nil {
		logging.Warn().Add(logging.ErrorField(err)).Msg("cache store failed")
	}
}

// cachedArtifact is the cache wire shape. The dataset is serialized
// explicitly because the artifact excludes it from its JSON form.
type cachedArtifact struct {
	Artifact chart.Artifact  `json:"artifact"`
	Dataset  dataset.Dataset `json:"dataset"`
}
