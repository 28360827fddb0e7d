package grid

import (
	"runtime"
	"sync"
)

// MeasuresParallel computes the same record as Measures, running the
// per-trajectory summaries across a bounded worker pool. The summaries
// are independent pure computations; the reduction runs single threaded
// after every worker has finished. workers <= 0 uses GOMAXPROCS.
func (g *Grid) MeasuresParallel(workers int) (Measures, error) {
	n := len(g.trajs)
	if n == 0 {
		return Measures{}, ErrNoTrajectories
	}
	q, err := g.Quantizer()
	if err != nil {
		return Measures{}, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	summaries := make([]summary, n)
	jobs := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, err := summarize(g.trajs[i], q)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				summaries[i] = s
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return Measures{}, firstErr
	}
	return reduce(summaries), nil
}
