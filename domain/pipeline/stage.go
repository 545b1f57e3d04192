// Package pipeline defines the generation lifecycle: the stages a
// request moves through and the trace of transitions it leaves behind.
package pipeline

import "time"

// Stage identifies one phase of a chart generation run.
type Stage string

const (
	// StageReceiving is the initial stage: request accepted and validated.
	StageReceiving Stage = "receiving"

	// StageSelecting covers strategy selection.
	StageSelecting Stage = "selecting"

	// StageResolving covers data validation and synthesis.
	StageResolving Stage = "resolving"

	// StageRendering covers markup or code generation.
	StageRendering Stage = "rendering"

	// StageExecuting covers out-of-process code execution.
	StageExecuting Stage = "executing"

	// StageAssembling covers artifact assembly and caching.
	StageAssembling Stage = "assembling"

	// StageDone is the terminal success stage.
	StageDone Stage = "done"

	// StageFailed is the terminal failure stage.
	StageFailed Stage = "failed"
)

// Terminal reports whether s ends the lifecycle.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Transition is one recorded stage change.
type Transition struct {
	From   Stage
	To     Stage
	Reason string
	At     time.Time
}

// Trace accumulates the transitions of a single run. Not safe for
// concurrent use; each run owns its trace.
type Trace struct {
	transitions []Transition
}

// Record appends a transition to the trace.
func (t *Trace) Record(from, to Stage, reason string) {
	t.transitions = append(t.transitions, Transition{
		From:   from,
		To:     to,
		Reason: reason,
		At:     time.Now(),
	})
}

// Transitions returns the recorded transitions in order.
func (t *Trace) Transitions() []Transition {
	out := make([]Transition, len(t.transitions))
	copy(out, t.transitions)
	return out
}
