package rps

import (
	"runtime"
	"sync"
)

// minRowsPerWorker keeps tiny grids on the calling goroutine.
const minRowsPerWorker = 8

// Workers resolves a requested worker count; non-positive means one per CPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// ParallelFor executes fn over contiguous chunks of [0, n).
func ParallelFor(n, workers int, fn func(start, end int)) {
	workers = Workers(workers)
	if n <= minRowsPerWorker || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minRowsPerWorker < workers {
		workers = n / minRowsPerWorker
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
