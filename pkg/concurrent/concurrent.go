package concurrent

import (
	"sync"

	"github.com/zeusync/ccd/pkg/sequence"
)

// ParallelMap applies mapFn to each element in parallel, preserving order.
// The workers parameter controls the number of goroutines; with one worker or
// fewer the elements are mapped inline.
func ParallelMap[T any, R any](i *sequence.Iterator[T], workers int, mapFn func(T) R) []R {
	in := i.Collect()
	out := make([]R, len(in))
	if workers <= 1 || len(in) < 2 {
		for idx, val := range in {
			out[idx] = mapFn(val)
		}
		return out
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for idx, val := range in {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v T) {
			defer wg.Done()
			out[i] = mapFn(v)
			<-sem
		}(idx, val)
	}
	wg.Wait()
	return out
}
