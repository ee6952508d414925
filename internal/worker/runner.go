package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Fn executes a single item against the backend
type Fn func(ctx context.Context, item Item) error

// Runner executes independent work items with a bounded number of
// concurrent workers
type Runner struct {
	logger *zap.Logger
}

// NewRunner creates a new runner
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes fn over every item with at most limit concurrently in flight
// and returns exactly one outcome per item. A failing item never cancels its
// siblings: failures are collected, not thrown. A worker claims its next item
// only after its current operation fully completes, so limit is a hard
// ceiling on outstanding backend calls. Outcome order is unspecified.
func (r *Runner) Run(ctx context.Context, items []Item, limit int, fn Fn) []Outcome {
	if len(items) == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	pending := make(chan Item, len(items))
	for _, item := range items {
		pending <- item
	}
	close(pending)

	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(items))
		wg       sync.WaitGroup
	)

	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			logger := r.logger.With(zap.Int("worker_id", id))
			for item := range pending {
				err := fn(ctx, item)
				if err != nil {
					logger.Warn("Item failed",
						zap.String("op", string(item.Op)),
						zap.String("key", item.Key),
						zap.Error(err),
					)
				} else {
					logger.Debug("Item completed",
						zap.String("op", string(item.Op)),
						zap.String("key", item.Key),
					)
				}

				mu.Lock()
				outcomes = append(outcomes, Outcome{Item: item, Err: err})
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	return outcomes
}
