// Package join provides the settle-all concurrency primitive used by the
// gateway's batch reads: fan out one call per input, isolate each branch's
// failure, and aggregate only the successful results. The contract that no
// failing branch aborts or corrupts the others is the point of the
// package, so it is explicit and tested rather than inlined.
package join

import (
	"context"
	"sync"
)

// Result is the settled outcome of one branch.
type Result[In, Out any] struct {
	Input In
	Value Out
	Err   error
}

// Settle runs fn once per input concurrently and waits for every branch.
// The returned slice preserves input order and contains one entry per
// input, successful or not. Branches share the caller's context but a
// branch failure never cancels its siblings.
func Settle[In, Out any](ctx context.Context, inputs []In, fn func(context.Context, In) (Out, error)) []Result[In, Out] {
	results := make([]Result[In, Out], len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		i, input := i, input
		wg.Add(1)

		go func() {
			defer wg.Done()

			value, err := fn(ctx, input)
			results[i] = Result[In, Out]{Input: input, Value: value, Err: err}
		}()
	}

	wg.Wait()

	return results
}

// Successes filters settled results down to the successful values,
// preserving input order, and reports how many branches failed.
func Successes[In, Out any](results []Result[In, Out]) ([]Out, int) {
	values := make([]Out, 0, len(results))
	failed := 0

	for _, r := range results {
		if r.Err != nil {
			failed++

			continue
		}

		values = append(values, r.Value)
	}

	return values, failed
}
