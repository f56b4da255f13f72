// Package memory provides an in-memory RunStore for runs without a database.
package memory

import (
	"context"
	"sync"

	"bookscrape/internal/scrape"
)

// Store retains run and page rows in memory. Safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	runs  []scrape.RunRecord
	pages []scrape.PageRow
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// RecordRun appends a run record.
func (s *Store) RecordRun(_ context.Context, run scrape.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

// RecordPage appends a page row.
func (s *Store) RecordPage(_ context.Context, page scrape.PageRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = append(s.pages, page)
	return nil
}

// Runs returns a copy of the recorded runs.
func (s *Store) Runs() []scrape.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scrape.RunRecord(nil), s.runs...)
}

// Pages returns a copy of the recorded page rows.
func (s *Store) Pages() []scrape.PageRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scrape.PageRow(nil), s.pages...)
}
