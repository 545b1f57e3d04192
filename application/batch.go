package application

import (
	"context"
	"sync"

	"github.com/deckster/chartgen/domain/chart"
	"github.com/deckster/chartgen/infrastructure/logging"
)

// defaultBatchWorkers bounds batch concurrency when none is configured.
const defaultBatchWorkers = 4

// BatchItem is the outcome of one chart in a batch. Exactly one of
// Artifact and Err is meaningful; Index refers to the request's
// position in the submitted batch.
type BatchItem struct {
	Index    int
	Artifact chart.Artifact
	Err      error
}

// BatchResult collects the outcomes of a whole batch in input order.
type BatchResult struct {
	Items []BatchItem
}

// Succeeded returns the number of items that produced an artifact.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, item := range r.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of items that errored.
func (r BatchResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

// GenerateBatch processes requests with bounded concurrency. One
// failing chart never aborts its siblings; each item carries its own
// error. Each item re-enters the rate limiter independently through
// the regular generation path. Cancelling ctx stops unstarted items
// with the context error.
func (e *Engine) GenerateBatch(ctx context.Context, requests []chart.Request, workers int) BatchResult {
	if workers <= 0 {
		workers = defaultBatchWorkers
	}
	if workers > len(requests) {
		workers = len(requests)
	}

	items := make([]BatchItem, len(requests))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				artifact, err := e.Generate(ctx, requests[i])
				items[i] = BatchItem{Index: i, Artifact: artifact, Err: err}
			}
		}()
	}

	for i := range requests {
		select {
		case jobs <- i:
		case <-ctx.Done():
			items[i] = BatchItem{Index: i, Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	result := BatchResult{Items: items}
	logging.Info().
		Add(logging.Int("batch_size", len(requests))).
		Add(logging.Int("succeeded", result.Succeeded())).
		Add(logging.Int("failed", result.Failed())).
		Msg("batch generation complete")
	return result
}
