// Package scrape defines the core types shared by the scraping pipeline.
package scrape

import (
	"net/http"
	"time"
)

// Product is the record extracted from one product page: the page title plus
// the label/value pairs read from the specification table. Duplicate labels
// overwrite earlier rows.
type Product struct {
	Title  string
	Fields map[string]string
	// SkippedRows counts table rows that lacked a label or value cell and
	// were dropped instead of failing the page.
	SkippedRows int
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// PageResult captures the outcome of processing a single URL. Err is nil on
// success; failed pages never abort the run.
type PageResult struct {
	URL        string
	Title      string
	OutputPath string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Succeeded reports whether the page produced an output file.
func (r PageResult) Succeeded() bool {
	return r.Err == nil
}

// Summary aggregates a whole run: one PageResult per input URL plus the
// elapsed wall-clock time measured from before the first fetch to after the
// join barrier.
type Summary struct {
	RunID     string
	Mode      string
	Results   []PageResult
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// ElapsedSeconds returns the run duration in seconds, the unit the CLI
// reports with two-decimal precision.
func (s Summary) ElapsedSeconds() float64 {
	return s.Elapsed.Seconds()
}
