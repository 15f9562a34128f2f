// Package parallel provides a small utility for running independent units
// of work concurrently and collecting their results keyed by item index.
package parallel

import (
	"fmt"
)

// Map runs fn for every index in [0, n) on at most numWorkers concurrent
// workers and returns the results in index order. Completion order never
// influences result placement: result i is always fn(i)'s value.
//
// All items are attempted; if any item fails, Map waits for the remaining
// workers and then returns the error of the lowest failing index with a
// nil result slice. There is no partial result: the work items are
// expected to feed a shared assembly that needs every slot.
func Map[T any](numWorkers, n int, fn func(i int) (T, error)) ([]T, error) {
	if numWorkers < 1 {
		return nil, fmt.Errorf("number of workers must be positive, got %d", numWorkers)
	}
	if n < 0 {
		return nil, fmt.Errorf("number of items must be non-negative, got %d", n)
	}

	results := make([]T, n)
	errs := make([]error, n)

	type job struct {
		index int
	}
	jobs := make(chan job)
	done := make(chan struct{})

	if numWorkers > n {
		numWorkers = n
	}
	for w := 0; w < numWorkers; w++ {
		go func() {
			for j := range jobs {
				results[j.index], errs[j.index] = fn(j.index)
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- job{index: i}
	}
	close(jobs)
	for w := 0; w < numWorkers; w++ {
		<-done
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("work item %d failed: %w", i, err)
		}
	}
	return results, nil
}
