/*
PURPOSE:
  Generic worker pool used to dispatch every prompt concurrently.

REQUIREMENTS:
  User-specified:
  - All prompts are in flight at once and the run waits for every one of them.

  Implementation-discovered:
  - Concurrency is capped by the workers setting and fed through a bounded queue
    (queue_size); both default to "one per item", which is a full fan-out.
  - Results come back in submission order so reports line up with the prompt list.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine (Runner.dispatch)

ERROR HANDLING:
  - None here. fn reports failures inside its own result value.

IMPLEMENTATION RULES:
  - No cancellation: every submitted item runs to completion.
  - results[i] is written only by the worker that took index i.

USAGE:
  out := engine.Dispatch(ctx, prompts, cfg.Workers, cfg.QueueSize, fn)

SELF-HEALING INSTRUCTIONS:
  - If a test deadlocks, check that jobs is closed after the last submit.

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - None.
*/

package engine

import (
	"context"
	"sync"
)

// Dispatch runs fn once per item on a pool of workers fed through a bounded
// queue, and waits for all of them. results[i] is fn's result for items[i]
// regardless of completion order.
//
// workers <= 0 means one worker per item; queueSize <= 0 means the queue
// holds as many jobs as there are workers.
func Dispatch[T, R any](ctx context.Context, items []T, workers, queueSize int, fn func(ctx context.Context, i int, item T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}
	if queueSize <= 0 {
		queueSize = workers
	}

	jobs := make(chan int, queueSize)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Each worker owns distinct indices; no lock needed.
				results[i] = fn(ctx, i, items[i])
			}
		}()
	}

	// Blocks while the queue is full.
	for i := range items {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}
