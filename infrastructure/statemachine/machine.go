// Package statemachine provides the statekit integration for the
// generation lifecycle.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/deckster/chartgen/domain/pipeline"
)

// Context carries run state through the state machine.
type Context struct {
	RequestID string
	Current   pipeline.Stage
	Trace     *pipeline.Trace
}

// NewContext creates a machine context for one request.
func NewContext(requestID string) *Context {
	return &Context{
		RequestID: requestID,
		Current:   pipeline.StageReceiving,
		Trace:     &pipeline.Trace{},
	}
}

// Stage IDs as StateID type for statekit.
const (
	stageReceiving  statekit.StateID = statekit.StateID(pipeline.StageReceiving)
	stageSelecting  statekit.StateID = statekit.StateID(pipeline.StageSelecting)
	stageResolving  statekit.StateID = statekit.StateID(pipeline.StageResolving)
	stageRendering  statekit.StateID = statekit.StateID(pipeline.StageRendering)
	stageExecuting  statekit.StateID = statekit.StateID(pipeline.StageExecuting)
	stageAssembling statekit.StateID = statekit.StateID(pipeline.StageAssembling)
	stageDone       statekit.StateID = statekit.StateID(pipeline.StageDone)
	stageFailed     statekit.StateID = statekit.StateID(pipeline.StageFailed)
)

// NewGenerationMachine creates the canonical generation statechart.
// Every stage can fail; rendering can skip execution and go straight to
// assembly for declarative charts or an unavailable backend.
func NewGenerationMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("generation").
		WithInitial(stageReceiving).
		WithContext(&Context{}).
		WithAction("recordTransition", recordTransition).
		State(stageReceiving).
			On("SELECT").Target(stageSelecting).Do("recordTransition").
			On("FAIL").Target(stageFailed).Do("recordTransition").
			Done().
		State(stageSelecting).
			On("RESOLVE").Target(stageResolving).Do("recordTransition").
			On("FAIL").Target(stageFailed).Do("recordTransition").
			Done().
		State(stageResolving).
			On("RENDER").Target(stageRendering).Do("recordTransition").
			On("FAIL").Target(stageFailed).Do("recordTransition").
			Done().
		State(stageRendering).
			On("EXECUTE").Target(stageExecuting).Do("recordTransition").
			On("ASSEMBLE").Target(stageAssembling).Do("recordTransition").
			On("FAIL").Target(stageFailed).Do("recordTransition").
			Done().
		State(stageExecuting).
			On("ASSEMBLE").Target(stageAssembling).Do("recordTransition").
			// A failed execution retries through rendering with a
			// fallback chart type.
			On("RENDER").Target(stageRendering).Do("recordTransition").
			On("FAIL").Target(stageFailed).Do("recordTransition").
			Done().
		State(stageAssembling).
			On("DONE").Target(stageDone).Do("recordTransition").
			On("FAIL").Target(stageFailed).Do("recordTransition").
			Done().
		State(stageDone).
			Final().
			Done().
		State(stageFailed).
			Final().
			Done().
		Build()
}

// EventForStage returns the event type that targets the given stage.
func EventForStage(to pipeline.Stage) statekit.EventType {
	switch to {
	case pipeline.StageSelecting:
		return "SELECT"
	case pipeline.StageResolving:
		return "RESOLVE"
	case pipeline.StageRendering:
		return "RENDER"
	case pipeline.StageExecuting:
		return "EXECUTE"
	case pipeline.StageAssembling:
		return "ASSEMBLE"
	case pipeline.StageDone:
		return "DONE"
	case pipeline.StageFailed:
		return "FAIL"
	default:
		return statekit.EventType(to)
	}
}
