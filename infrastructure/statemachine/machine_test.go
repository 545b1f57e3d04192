package statemachine

import (
	"testing"

	"github.com/deckster/chartgen/domain/pipeline"
)

func TestNewContext(t *testing.T) {
	t.Parallel()

	ctx := NewContext("req-1")
	if ctx.RequestID != "req-1" {
		t.Errorf("RequestID = %s", ctx.RequestID)
	}
	if ctx.Current != pipeline.StageReceiving {
		t.Errorf("initial stage = %s, want receiving", ctx.Current)
	}
	if ctx.Trace == nil {
		t.Error("Trace should be initialized")
	}
}

func TestNewGenerationMachine(t *testing.T) {
	t.Parallel()

	machine, err := NewGenerationMachine()
	if err != nil {
		t.Fatalf("NewGenerationMachine() error = %v", err)
	}
	if machine == nil {
		t.Fatal("NewGenerationMachine() returned nil machine")
	}
}

func TestEventForStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage    pipeline.Stage
		expected string
	}{
		{pipeline.StageSelecting, "SELECT"},
		{pipeline.StageResolving, "RESOLVE"},
		{pipeline.StageRendering, "RENDER"},
		{pipeline.StageExecuting, "EXECUTE"},
		{pipeline.StageAssembling, "ASSEMBLE"},
		{pipeline.StageDone, "DONE"},
		{pipeline.StageFailed, "FAIL"},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			t.Parallel()
			if event := EventForStage(tt.stage); string(event) != tt.expected {
				t.Errorf("EventForStage(%s) = %s, want %s", tt.stage, event, tt.expected)
			}
		})
	}
}

func newTestInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	machine, err := NewGenerationMachine()
	if err != nil {
		t.Fatalf("machine build failed: %v", err)
	}
	interp := NewInterpreter(machine, NewContext("req-1"))
	interp.Start()
	return interp
}

func TestLifecycle(t *testing.T) {
	t.Run("full_code_generation_path", func(t *testing.T) {
		interp := newTestInterpreter(t)
		defer interp.Stop()

		path := []pipeline.Stage{
			pipeline.StageSelecting,
			pipeline.StageResolving,
			pipeline.StageRendering,
			pipeline.StageExecuting,
			pipeline.StageAssembling,
			pipeline.StageDone,
		}
		for _, stage := range path {
			if got := interp.Advance(stage, "test"); got != stage {
				t.Fatalf("advance to %s landed in %s", stage, got)
			}
		}
		if !interp.IsTerminal() {
			t.Error("lifecycle should be terminal after done")
		}
		if got := len(interp.Trace()); got != len(path) {
			t.Errorf("trace has %d transitions, want %d", got, len(path))
		}
	})

	t.Run("declarative_path_skips_execution", func(t *testing.T) {
		interp := newTestInterpreter(t)
		defer interp.Stop()

		interp.Advance(pipeline.StageSelecting, "")
		interp.Advance(pipeline.StageResolving, "")
		interp.Advance(pipeline.StageRendering, "")
		if got := interp.Advance(pipeline.StageAssembling, "declarative"); got != pipeline.StageAssembling {
			t.Fatalf("rendering should reach assembling directly, landed in %s", got)
		}
	})

	t.Run("execution_failure_loops_back_to_rendering", func(t *testing.T) {
		interp := newTestInterpreter(t)
		defer interp.Stop()

		interp.Advance(pipeline.StageSelecting, "")
		interp.Advance(pipeline.StageResolving, "")
		interp.Advance(pipeline.StageRendering, "")
		interp.Advance(pipeline.StageExecuting, "")
		if got := interp.Advance(pipeline.StageRendering, "fallback to bar"); got != pipeline.StageRendering {
			t.Fatalf("execution should loop to rendering, landed in %s", got)
		}
	})

	t.Run("any_stage_can_fail", func(t *testing.T) {
		interp := newTestInterpreter(t)
		defer interp.Stop()

		interp.Advance(pipeline.StageSelecting, "")
		if got := interp.Advance(pipeline.StageFailed, "provider down"); got != pipeline.StageFailed {
			t.Fatalf("fail transition landed in %s", got)
		}
		if !interp.IsTerminal() {
			t.Error("failed stage should be terminal")
		}
	})

	t.Run("invalid_transition_is_ignored", func(t *testing.T) {
		interp := newTestInterpreter(t)
		defer interp.Stop()

		// Receiving cannot jump straight to executing.
		if got := interp.Advance(pipeline.StageExecuting, ""); got != pipeline.StageReceiving {
			t.Fatalf("invalid transition moved the machine to %s", got)
		}
	})
}
