// Package executor defines the domain interface for the execution
// bridge: the sandboxed out-of-process runner for generated plotting
// code. Callers branch only on availability, never on backend identity.
package executor

import (
	"context"
	"errors"
	"time"
)

// Bridge errors. Raw subprocess stack traces never cross this boundary;
// failures surface as structured errors the orchestrator can act on.
var (
	// ErrExecutionFailed indicates the generated code raised an error.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrTimeout indicates the execution exceeded its deadline.
	ErrTimeout = errors.New("execution timed out")

	// ErrNoImage indicates the code ran but produced no raster output.
	ErrNoImage = errors.New("execution produced no image")
)

// OutputMarker prefixes the base64 raster payload a generated script
// writes to stdout. The bridge scans for this marker to extract the
// image from arbitrary interpreter output.
const OutputMarker = "CHARTGEN_PNG_B64:"

// Result is the outcome of running generated plotting code.
type Result struct {
	// Image is the rendered raster image bytes.
	Image []byte

	// Encoding names the raster encoding (typically "png").
	Encoding string

	// Executed reports whether the code actually ran. False means the
	// backend was unavailable and the caller should surface the source
	// code unexecuted.
	Executed bool

	// Duration is the wall-clock execution time.
	Duration time.Duration
}

// Bridge runs generated plotting code in an isolated environment.
type Bridge interface {
	// IsAvailable probes whether an execution backend can run code.
	IsAvailable() bool

	// Execute runs source under the given timeout and captures the
	// raster image it emits. An unavailable backend returns
	// Result{Executed: false} with a nil error; real failures return
	// an error wrapping one of the bridge sentinel errors. Caller
	// cancellation terminates the subprocess.
	Execute(ctx context.Context, source string, timeout time.Duration) (Result, error)
}
