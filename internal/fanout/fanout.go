// Package fanout runs independent jobs concurrently and waits until every
// one of them has settled. A failing job never cancels its siblings.
package fanout

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Settle calls fn for every index in [0, n) with at most workers calls in
// flight and returns once all calls have returned. errs[i] holds the outcome
// of item i. When ctx is cancelled, items that have not started yet are
// reported with ctx.Err().
func Settle(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}
	if workers <= 0 || workers > n {
		workers = n
	}

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < n; j++ {
				errs[j] = err
			}
			break
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer sem.Release(1)
			errs[idx] = fn(ctx, idx)
		}(i)
	}

	wg.Wait()
	return errs
}
