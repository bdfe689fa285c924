// Package probe implements the bounded worker pool that drives every scan.
//
// A pool runs a finite batch of independent probe descriptors against a
// probe function with at most a fixed number of probes in flight. Results
// are emitted in completion order, exactly one per descriptor. Probe
// functions return plain values: any transport failure must already be
// folded into the result before it leaves the probe function.
package probe

import (
	"context"
	"errors"
	"sync"
)

// ErrNoWorkers is returned when a pool is requested with a non-positive
// worker budget.
var ErrNoWorkers = errors.New("probe: worker count must be positive")

// Func executes a single probe described by d and returns its result.
// Implementations must not panic and must honor ctx for long waits.
type Func[D, R any] func(ctx context.Context, d D) R

// Run executes descriptors against fn with at most workers probes in
// flight and returns a channel of results in completion order. The
// channel is closed after the batch finishes or ctx is cancelled;
// cancellation stops dispatch and drops results of abandoned probes.
func Run[D, R any](ctx context.Context, descriptors []D, workers int, fn Func[D, R]) (<-chan R, error) {
	if workers < 1 {
		return nil, ErrNoWorkers
	}

	jobs := make(chan D, len(descriptors))
	results := make(chan R, len(descriptors))

	for _, d := range descriptors {
		jobs <- d
	}
	close(jobs)

	if workers > len(descriptors) {
		workers = len(descriptors)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-jobs:
					if !ok {
						return
					}
					r := fn(ctx, d)
					if ctx.Err() != nil {
						// Batch deadline fired while this probe was in
						// flight; its result is discarded.
						return
					}
					results <- r
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

// Collect runs the batch and drains all results into a slice. When ctx is
// cancelled mid-batch the results gathered so far are returned together
// with ctx.Err().
func Collect[D, R any](ctx context.Context, descriptors []D, workers int, fn Func[D, R]) ([]R, error) {
	ch, err := Run(ctx, descriptors, workers, fn)
	if err != nil {
		return nil, err
	}

	out := make([]R, 0, len(descriptors))
	for r := range ch {
		out = append(out, r)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
