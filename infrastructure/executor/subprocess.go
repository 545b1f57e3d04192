// Package executor implements the execution bridge: out-of-process
// interpreters that run generated plotting code and capture the raster
// image it emits. The zero-dependency fallback is the unavailable
// bridge, which degrades the pipeline to source-only artifacts.
package executor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/deckster/chartgen/domain/executor"
)

const (
	// defaultTimeout bounds a single execution when the caller passes none.
	defaultTimeout = 30 * time.Second

	// maxStderr bounds how much interpreter noise is carried into error
	// messages. Full tracebacks never cross the bridge boundary.
	maxStderr = 512
)

// SubprocessBridge runs generated code under a local Python interpreter
// in a fresh process per execution.
type SubprocessBridge struct {
	interpreter string
	workDir     string

	probeOnce sync.Once
	probed    bool
}

// SubprocessOption configures a SubprocessBridge.
type SubprocessOption func(*SubprocessBridge)

// WithInterpreter overrides the interpreter binary (default "python3").
func WithInterpreter(path string) SubprocessOption {
	return func(b *SubprocessBridge) { b.interpreter = path }
}

// WithWorkDir sets the working directory for executions.
func WithWorkDir(dir string) SubprocessOption {
	return func(b *SubprocessBridge) { b.workDir = dir }
}

// NewSubprocessBridge creates a bridge backed by a local interpreter.
func NewSubprocessBridge(opts ...SubprocessOption) *SubprocessBridge {
	b := &SubprocessBridge{interpreter: "python3"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsAvailable probes for the interpreter on PATH. The probe runs once;
// availability does not flap between executions.
func (b *SubprocessBridge) IsAvailable() bool {
	b.probeOnce.Do(func() {
		_, err := exec.LookPath(b.interpreter)
		b.probed = err == nil
	})
	return b.probed
}

// Execute runs source in a fresh interpreter process and extracts the
// marker-prefixed base64 image from its stdout. An unavailable
// interpreter reports Executed: false without error.
func (b *SubprocessBridge) Execute(ctx context.Context, source string, timeout time.Duration) (executor.Result, error) {
	if !b.IsAvailable() {
		return executor.Result{Executed: false}, nil
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	script, err := writeScript(source)
	if err != nil {
		return executor.Result{}, fmt.Errorf("%w: staging script: %v", executor.ErrExecutionFailed, err)
	}
	defer os.Remove(script)

	cmd := exec.CommandContext(ctx, b.interpreter, script) // #nosec G204 -- interpreter is operator-configured
	if b.workDir != "" {
		cmd.Dir = b.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return executor.Result{}, fmt.Errorf("%w: after %s", executor.ErrTimeout, timeout)
		}
		return executor.Result{}, fmt.Errorf("%w: %s", executor.ErrExecutionFailed, summarizeStderr(stderr.String()))
	}

	image, err := extractImage(stdout.String())
	if err != nil {
		return executor.Result{}, err
	}

	return executor.Result{
		Image:    image,
		Encoding: "png",
		Executed: true,
		Duration: duration,
	}, nil
}

// writeScript stages the source as a temp file and returns its path.
func writeScript(source string) (string, error) {
	f, err := os.CreateTemp("", "chartgen-*.py")
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(source); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// extractImage scans interpreter stdout for the marker line and decodes
// the base64 payload after it.
func extractImage(stdout string) ([]byte, error) {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, executor.OutputMarker) {
			continue
		}
		payload := strings.TrimPrefix(line, executor.OutputMarker)
		image, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed image payload", executor.ErrExecutionFailed)
		}
		if len(image) == 0 {
			return nil, executor.ErrNoImage
		}
		return image, nil
	}
	return nil, executor.ErrNoImage
}

// summarizeStderr reduces interpreter stderr to its most useful tail:
// the final non-empty line, which for Python holds the exception type
// and message.
func summarizeStderr(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if len(line) > maxStderr {
			line = line[:maxStderr]
		}
		return line
	}
	return "interpreter exited with an error"
}
