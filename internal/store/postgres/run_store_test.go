package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"bookscrape/internal/scrape"
)

func TestRecordPageInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_pages")
	require.NoError(t, err)

	now := time.Unix(1700000000, 0).UTC()
	row := scrape.PageRow{
		RunID:      "run-1",
		URL:        "https://example.test/book/1",
		Title:      "Sample Book",
		OutputPath: "data/Sample_Book.json",
		StatusCode: 200,
		DurationMs: 42,
		FetchedAt:  now,
	}

	mock.ExpectExec("INSERT INTO scrape_pages").
		WithArgs(
			row.RunID,
			row.URL,
			row.Title,
			row.OutputPath,
			row.StatusCode,
			row.DurationMs,
			row.ErrorText,
			row.FetchedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.RecordPage(context.Background(), row)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_pages")
	require.NoError(t, err)

	started := time.Unix(1700000000, 0).UTC()
	run := scrape.RunRecord{
		ID:        "run-1",
		Mode:      scrape.ModeConcurrent,
		StartedAt: started,
		Finished:  started.Add(3 * time.Second),
		URLCount:  10,
		Succeeded: 9,
		Failed:    1,
	}

	mock.ExpectExec("INSERT INTO scrape_pages_runs").
		WithArgs(
			run.ID,
			run.Mode,
			run.StartedAt,
			run.Finished,
			run.URLCount,
			run.Succeeded,
			run.Failed,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.RecordRun(context.Background(), run)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPageRequiresRunID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "")
	require.NoError(t, err)

	err = store.RecordPage(context.Background(), scrape.PageRow{})
	require.Error(t, err)
}

func TestNewRunStoreWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewRunStoreWithPool(mock, "bad-table;drop")
	require.Error(t, err)

	_, err = NewRunStoreWithPool(nil, "scrape_pages")
	require.Error(t, err)
}
