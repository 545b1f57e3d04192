package executor

import (
	"context"
	"encoding/base64"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/deckster/chartgen/domain/executor"
)

// The subprocess tests drive the bridge with /bin/sh standing in for the
// interpreter, so they run anywhere without a Python installation.
func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-backed bridge tests require a POSIX shell")
	}
}

func TestSubprocessBridge(t *testing.T) {
	requireShell(t)

	t.Run("captures_marker_prefixed_image", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
		source := "echo before\necho '" + executor.OutputMarker + payload + "'\n"

		b := NewSubprocessBridge(WithInterpreter("sh"))
		res, err := b.Execute(context.Background(), source, 5*time.Second)
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if !res.Executed {
			t.Fatal("result should report execution")
		}
		if string(res.Image) != "fake-png-bytes" {
			t.Errorf("image = %q, want decoded payload", res.Image)
		}
		if res.Encoding != "png" {
			t.Errorf("encoding = %q, want png", res.Encoding)
		}
		if res.Duration <= 0 {
			t.Error("duration should be recorded")
		}
	})

	t.Run("missing_marker_is_no_image", func(t *testing.T) {
		b := NewSubprocessBridge(WithInterpreter("sh"))
		_, err := b.Execute(context.Background(), "echo nothing useful\n", 5*time.Second)
		if !errors.Is(err, executor.ErrNoImage) {
			t.Fatalf("err = %v, want ErrNoImage", err)
		}
	})

	t.Run("nonzero_exit_summarizes_stderr", func(t *testing.T) {
		b := NewSubprocessBridge(WithInterpreter("sh"))
		_, err := b.Execute(context.Background(), "echo 'ValueError: bad data' >&2\nexit 3\n", 5*time.Second)
		if !errors.Is(err, executor.ErrExecutionFailed) {
			t.Fatalf("err = %v, want ErrExecutionFailed", err)
		}
		if got := err.Error(); !strings.Contains(got, "ValueError: bad data") {
			t.Errorf("error should carry the stderr summary, got %q", got)
		}
	})

	t.Run("deadline_maps_to_timeout_error", func(t *testing.T) {
		b := NewSubprocessBridge(WithInterpreter("sh"))
		_, err := b.Execute(context.Background(), "sleep 5\n", 100*time.Millisecond)
		if !errors.Is(err, executor.ErrTimeout) {
			t.Fatalf("err = %v, want ErrTimeout", err)
		}
	})

	t.Run("missing_interpreter_reports_unavailable", func(t *testing.T) {
		b := NewSubprocessBridge(WithInterpreter("chartgen-no-such-interpreter"))
		if b.IsAvailable() {
			t.Fatal("nonexistent interpreter should be unavailable")
		}
		res, err := b.Execute(context.Background(), "echo hi\n", time.Second)
		if err != nil {
			t.Fatalf("unavailable execution returned error: %v", err)
		}
		if res.Executed {
			t.Error("unavailable bridge must not report execution")
		}
	})

	t.Run("malformed_payload_is_an_error", func(t *testing.T) {
		b := NewSubprocessBridge(WithInterpreter("sh"))
		_, err := b.Execute(context.Background(), "echo '"+executor.OutputMarker+"not base64!!'\n", 5*time.Second)
		if !errors.Is(err, executor.ErrExecutionFailed) {
			t.Fatalf("err = %v, want ErrExecutionFailed", err)
		}
	})
}

func TestUnavailableBridge(t *testing.T) {
	b := NewUnavailableBridge()
	if b.IsAvailable() {
		t.Error("unavailable bridge reports availability")
	}
	res, err := b.Execute(context.Background(), "anything", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Executed {
		t.Error("unavailable bridge must not execute")
	}
}

func TestSummarizeStderr(t *testing.T) {
	t.Run("last_line_wins", func(t *testing.T) {
		got := summarizeStderr("Traceback (most recent call last):\n  File x\nKeyError: 'missing'\n")
		if got != "KeyError: 'missing'" {
			t.Errorf("summary = %q", got)
		}
	})

	t.Run("empty_stderr_has_fallback", func(t *testing.T) {
		if got := summarizeStderr("  \n\n"); got == "" {
			t.Error("empty stderr should still summarize")
		}
	})
}
