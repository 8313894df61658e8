package simulation

import (
	"golang.org/x/sync/errgroup"
)

// parallelRange splits [0, n) into contiguous chunks, runs body on each chunk in
// its own goroutine and returns once every chunk is done.
func parallelRange(n, workers int, body func(lo, hi int)) {
	if workers <= 1 || n <= 1 {
		body(0, n)
		return
	}
	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			body(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
