package chart

import "errors"

// Domain errors for the chart pipeline. Only ErrValidation, ErrNoData,
// and exhausted-retry generation failures ever reach the caller;
// selection problems are always recovered internally.
var (
	// ErrValidation indicates a malformed request. Never retried.
	ErrValidation = errors.New("invalid chart request")

	// ErrNoData indicates the request forbids synthesis and carries no
	// usable data rows.
	ErrNoData = errors.New("no data available")

	// ErrInvalidType indicates an unknown chart type name.
	ErrInvalidType = errors.New("invalid chart type")

	// ErrDeclarativeUnsupported indicates declarative rendering was
	// forced for a chart type outside the declarative set.
	ErrDeclarativeUnsupported = errors.New("chart type not supported by declarative renderer")

	// ErrSelection indicates strategy selection failed. Internal only;
	// always recovered by the rule-based fallback.
	ErrSelection = errors.New("strategy selection failed")

	// ErrSynthesis indicates synthetic data generation failed.
	ErrSynthesis = errors.New("data synthesis failed")

	// ErrRender indicates the renderer could not produce output.
	ErrRender = errors.New("chart rendering failed")

	// ErrRateLimited indicates the LLM budget was exhausted after
	// bounded retries. Retryable by the caller.
	ErrRateLimited = errors.New("rate limited")

	// ErrGeneration is the terminal error after all fallbacks failed.
	ErrGeneration = errors.New("chart generation failed")
)
