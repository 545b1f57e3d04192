package executor

import (
	"context"
	"time"

	"github.com/deckster/chartgen/domain/executor"
)

// UnavailableBridge is the no-backend bridge. Every execution reports
// Executed: false so the pipeline surfaces generated source unexecuted.
type UnavailableBridge struct{}

// NewUnavailableBridge creates a bridge with no execution backend.
func NewUnavailableBridge() *UnavailableBridge {
	return &UnavailableBridge{}
}

// IsAvailable always reports false.
func (b *UnavailableBridge) IsAvailable() bool {
	return false
}

// Execute reports that the code did not run, without error.
func (b *UnavailableBridge) Execute(_ context.Context, _ string, _ time.Duration) (executor.Result, error) {
	return executor.Result{Executed: false}, nil
}
