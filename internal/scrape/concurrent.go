package scrape

import (
	"context"
	"sync"
)

// RunConcurrent launches one task per URL onto a pool bounded by concurrency
// and waits for every task at the join barrier before summarizing. Each task
// returns a PageResult value; a failing page never cancels its siblings.
func (r *Runner) RunConcurrent(ctx context.Context, runID string, urls []string, concurrency int) Summary {
	if concurrency <= 0 {
		concurrency = 1
	}

	start := r.clock.Now()
	r.emitRunStart(runID)

	results := make([]PageResult, len(urls))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, pageURL := range urls {
		wg.Add(1)
		go func(slot int, target string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[slot] = r.processURL(ctx, runID, target)
		}(i, pageURL)
	}
	wg.Wait()

	return r.finishRun(ctx, runID, ModeConcurrent, start, results)
}
