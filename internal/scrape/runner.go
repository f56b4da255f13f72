package scrape

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"bookscrape/internal/progress"
)

// RunStore persists run and page outcomes for later inspection.
type RunStore interface {
	RecordRun(ctx context.Context, run RunRecord) error
	RecordPage(ctx context.Context, page PageRow) error
}

// RunRecord is the per-run row written once the join barrier completes.
type RunRecord struct {
	ID        string
	Mode      string
	StartedAt time.Time
	Finished  time.Time
	URLCount  int
	Succeeded int
	Failed    int
}

// PageRow is the per-page row written as each URL finishes.
type PageRow struct {
	RunID      string
	URL        string
	Title      string
	OutputPath string
	StatusCode int
	DurationMs int64
	ErrorText  string
	FetchedAt  time.Time
}

// Modes accepted by the CLI and recorded into summaries.
const (
	ModeSequential = "sequential"
	ModeConcurrent = "concurrent"
)

// Runner drives the fetch, extract, persist pipeline over a URL list.
type Runner struct {
	fetcher   Fetcher
	extractor Extractor
	sink      Sink
	clock     Clock
	store     RunStore
	emitter   progress.Emitter
	logger    *zap.Logger
}

// NewRunner constructs a Runner. Store and emitter may be nil; logging falls
// back to a nop logger.
func NewRunner(
	fetcher Fetcher,
	extractor Extractor,
	sink Sink,
	clock Clock,
	store RunStore,
	emitter progress.Emitter,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		fetcher:   fetcher,
		extractor: extractor,
		sink:      sink,
		clock:     clock,
		store:     store,
		emitter:   emitter,
		logger:    logger,
	}
}

// RunSequential processes every URL one at a time, fully completing one page
// before starting the next. A failing page is recorded and the run continues.
func (r *Runner) RunSequential(ctx context.Context, runID string, urls []string) Summary {
	start := r.clock.Now()
	r.emitRunStart(runID)

	results := make([]PageResult, len(urls))
	for i, pageURL := range urls {
		results[i] = r.processURL(ctx, runID, pageURL)
	}

	return r.finishRun(ctx, runID, ModeSequential, start, results)
}

func (r *Runner) processURL(ctx context.Context, runID, pageURL string) PageResult {
	result := PageResult{URL: pageURL}
	pageStart := r.clock.Now()

	resp, err := r.fetcher.Fetch(ctx, pageURL)
	result.StatusCode = resp.StatusCode
	if err != nil {
		result.Err = err
		result.Duration = r.clock.Now().Sub(pageStart)
		r.recordPage(ctx, runID, result)
		return result
	}

	product, err := r.extractor.Extract(resp.Body)
	if err != nil {
		result.Err = err
		result.Duration = r.clock.Now().Sub(pageStart)
		r.recordPage(ctx, runID, result)
		return result
	}
	if product.SkippedRows > 0 {
		r.logger.Warn("table rows skipped during extraction",
			zap.String("url", pageURL),
			zap.Int("skipped_rows", product.SkippedRows),
		)
	}

	path, err := r.sink.SaveProduct(ctx, product)
	if err != nil {
		result.Err = err
		result.Duration = r.clock.Now().Sub(pageStart)
		r.recordPage(ctx, runID, result)
		return result
	}

	result.Title = product.Title
	result.OutputPath = path
	result.Duration = r.clock.Now().Sub(pageStart)
	r.logger.Debug("page processed",
		zap.String("url", pageURL),
		zap.String("title", product.Title),
		zap.String("output", path),
	)
	r.recordPage(ctx, runID, result)
	return result
}

func (r *Runner) finishRun(
	ctx context.Context,
	runID string,
	mode string,
	start time.Time,
	results []PageResult,
) Summary {
	summary := Summary{
		RunID:   runID,
		Mode:    mode,
		Results: results,
		Elapsed: r.clock.Now().Sub(start),
	}
	for _, res := range results {
		if res.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
			r.logger.Error("page failed",
				zap.String("url", res.URL),
				zap.Error(res.Err),
			)
		}
	}

	r.emitRunDone(runID, summary)

	if r.store != nil {
		record := RunRecord{
			ID:        runID,
			Mode:      mode,
			StartedAt: start,
			Finished:  r.clock.Now(),
			URLCount:  len(results),
			Succeeded: summary.Succeeded,
			Failed:    summary.Failed,
		}
		if err := r.store.RecordRun(ctx, record); err != nil {
			r.logger.Warn("record run failed", zap.String("run_id", runID), zap.Error(err))
		}
	}
	return summary
}

func (r *Runner) recordPage(ctx context.Context, runID string, result PageResult) {
	r.emitPage(runID, result)
	if r.store == nil {
		return
	}
	row := PageRow{
		RunID:      runID,
		URL:        result.URL,
		Title:      result.Title,
		OutputPath: result.OutputPath,
		StatusCode: result.StatusCode,
		DurationMs: result.Duration.Milliseconds(),
		FetchedAt:  r.clock.Now(),
	}
	if result.Err != nil {
		row.ErrorText = result.Err.Error()
	}
	if err := r.store.RecordPage(ctx, row); err != nil {
		r.logger.Warn("record page failed", zap.String("url", result.URL), zap.Error(err))
	}
}

func (r *Runner) emitRunStart(runID string) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(progress.Event{
		RunID: progress.ParseRunID(runID),
		TS:    r.clock.Now(),
		Stage: progress.StageRunStart,
	})
}

func (r *Runner) emitRunDone(runID string, summary Summary) {
	if r.emitter == nil {
		return
	}
	stage := progress.StageRunDone
	note := ""
	if summary.Failed > 0 {
		stage = progress.StageRunError
		note = "one or more pages failed"
	}
	r.emitter.Emit(progress.Event{
		RunID: progress.ParseRunID(runID),
		TS:    r.clock.Now(),
		Stage: stage,
		Dur:   summary.Elapsed,
		Note:  note,
	})
}

func (r *Runner) emitPage(runID string, result PageResult) {
	if r.emitter == nil {
		return
	}
	stage := progress.StagePageDone
	note := ""
	if result.Err != nil {
		stage = progress.StagePageError
		note = result.Err.Error()
	}
	r.emitter.Emit(progress.Event{
		RunID:       progress.ParseRunID(runID),
		TS:          r.clock.Now(),
		Stage:       stage,
		Site:        siteOf(result.URL),
		URL:         result.URL,
		StatusClass: progress.ClassifyStatus(result.StatusCode),
		Dur:         result.Duration,
		Note:        note,
	})
}

func siteOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
