package dynamo

import "golang.org/x/sync/errgroup"

// DefaultWorkers is used when a non-positive worker count is requested.
const DefaultWorkers = 4

// ParallelFor executes fn over [0, n) split into contiguous chunks of at
// least minChunk items. It returns once every chunk has finished, with the
// first error reported by any chunk. Small ranges run inline.
func ParallelFor(n, minChunk, workers int, fn func(start, end int) error) error {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		return fn(0, n)
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			return fn(start, end)
		})
	}

	return g.Wait()
}
