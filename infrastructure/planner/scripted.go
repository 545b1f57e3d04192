package planner

import (
	"context"
	"errors"
	"sync"
)

// ErrScriptExhausted is returned when a scripted provider runs out of
// responses.
var ErrScriptExhausted = errors.New("scripted provider exhausted")

// ScriptedProvider returns a predefined sequence of responses for
// testing. Entries with a non-nil error simulate provider failures.
type ScriptedProvider struct {
	responses []ScriptedResponse
	index     int
	mu        sync.Mutex
}

// ScriptedResponse is one scripted completion outcome.
type ScriptedResponse struct {
	Content string
	Err     error
}

// NewScriptedProvider creates a scripted provider with the given
// responses.
func NewScriptedProvider(responses ...ScriptedResponse) *ScriptedProvider {
	return &ScriptedProvider{responses: responses}
}

// Name returns the provider name.
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// Complete returns the next scripted response in the sequence.
func (p *ScriptedProvider) Complete(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index >= len(p.responses) {
		return CompletionResponse{}, ErrScriptExhausted
	}

	r := p.responses[p.index]
	p.index++

	if r.Err != nil {
		return CompletionResponse{}, r.Err
	}
	return CompletionResponse{
		Message: Message{Role: "assistant", Content: r.Content},
	}, nil
}

// Reset rewinds the provider to the first response.
func (p *ScriptedProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = 0
}

// Remaining returns the number of unserved responses.
func (p *ScriptedProvider) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.responses) - p.index
}
