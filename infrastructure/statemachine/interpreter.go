package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/deckster/chartgen/domain/pipeline"
)

// TransitionPayload carries additional data with a transition event.
type TransitionPayload struct {
	ToStage pipeline.Stage
	Reason  string
}

// recordTransition records the stage change in the run trace.
// In statekit, actions receive a pointer to the context. Since our
// context is *Context, actions receive **Context.
func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Trace == nil {
		return
	}

	c := *ctx
	from := c.Current

	var to pipeline.Stage
	var reason string
	if payload, ok := event.Payload.(TransitionPayload); ok {
		to = payload.ToStage
		reason = payload.Reason
	}

	c.Trace.Record(from, to, reason)
	c.Current = to
}

// Interpreter wraps the statekit interpreter with lifecycle helpers.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates an interpreter for the generation machine.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start initializes the interpreter and enters the initial stage.
func (i *Interpreter) Start() {
	i.interp.Start()
	i.ctx.Current = pipeline.Stage(i.interp.State().Value)
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// Stage returns the current lifecycle stage.
func (i *Interpreter) Stage() pipeline.Stage {
	return pipeline.Stage(i.interp.State().Value)
}

// Advance moves the lifecycle to the target stage, recording the reason
// in the trace. Invalid transitions are ignored by the machine; the
// returned stage reflects what actually happened.
func (i *Interpreter) Advance(to pipeline.Stage, reason string) pipeline.Stage {
	i.interp.Send(statekit.Event{
		Type: EventForStage(to),
		Payload: TransitionPayload{
			ToStage: to,
			Reason:  reason,
		},
	})
	return i.Stage()
}

// IsTerminal reports whether the lifecycle has ended.
func (i *Interpreter) IsTerminal() bool {
	return i.interp.Done()
}

// Trace returns the recorded transitions of this run.
func (i *Interpreter) Trace() []pipeline.Transition {
	return i.ctx.Trace.Transitions()
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}
