package concurrency

import (
	"context"
	"sync"
)

// Options configures parallel processing.
type Options struct {
	// MaxWorkers caps the number of concurrent calls.
	MaxWorkers int
}

// DefaultOptions returns the default worker count.
func DefaultOptions() Options {
	return Options{MaxWorkers: 4}
}

// Result is the outcome of processing one item.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// ProcessAll runs fn for every item with at most opts.MaxWorkers in flight and
// returns one Result per item, in input order. Items not started before ctx is
// done get ctx.Err() as their error, so the result always has len(items) entries.
func ProcessAll[T any, R any](
	ctx context.Context,
	items []T,
	opts Options,
	fn func(ctx context.Context, index int, item T) (R, error),
) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int, len(items))
	for i := range items {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = Result[R]{Index: idx, Err: err}
					continue
				}
				value, err := fn(ctx, idx, items[idx])
				results[idx] = Result[R]{Index: idx, Value: value, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}

// Errors returns the non-nil errors of results, in input order.
func Errors[R any](results []Result[R]) []error {
	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errs
}
