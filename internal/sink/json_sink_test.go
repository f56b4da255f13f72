package sink_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookscrape/internal/scrape"
	"bookscrape/internal/sink"
)

func TestSanitizeTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "spaces become underscores", in: "Sample Book", want: "Sample_Book"},
		{name: "whitespace runs collapse", in: "Same  \t Title", want: "Same_Title"},
		{name: "leading and trailing trimmed", in: "  Padded  ", want: "Padded"},
		{name: "already sanitized", in: "Sample_Book", want: "Sample_Book"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sink.SanitizeTitle(tt.in))
		})
	}
}

func TestSanitizeTitleIdempotent(t *testing.T) {
	t.Parallel()

	once := sink.SanitizeTitle("A  Book With\tTabs")
	assert.Equal(t, once, sink.SanitizeTitle(once))
}

func TestSaveProductRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := sink.New(dir, nil)
	require.NoError(t, err)

	fields := map[string]string{"Price": "$10", "Stock": "In stock"}
	path, err := s.SaveProduct(context.Background(), scrape.Product{
		Title:  "Sample Book",
		Fields: fields,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Sample_Book.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, fields, got)
}

func TestSaveProductCollisionOverwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := sink.New(dir, nil)
	require.NoError(t, err)

	_, err = s.SaveProduct(context.Background(), scrape.Product{
		Title:  "Same Title",
		Fields: map[string]string{"Version": "first"},
	})
	require.NoError(t, err)

	// Differs only by whitespace, sanitizes to the same stem.
	path, err := s.SaveProduct(context.Background(), scrape.Product{
		Title:  "Same  Title",
		Fields: map[string]string{"Version": "second"},
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "second", got["Version"])
}

func TestSaveProductEmptyTitle(t *testing.T) {
	t.Parallel()

	s, err := sink.New(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = s.SaveProduct(context.Background(), scrape.Product{Title: "   "})
	require.Error(t, err)
}

func TestSaveProductCanceledContext(t *testing.T) {
	t.Parallel()

	s, err := sink.New(t.TempDir(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.SaveProduct(ctx, scrape.Product{Title: "Sample Book"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewCreatesMissingRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "data")
	_, err := sink.New(root, nil)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewRejectsFileRoot(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := sink.New(file, nil)
	require.Error(t, err)
}

func TestNewRejectsEmptyRoot(t *testing.T) {
	t.Parallel()

	_, err := sink.New("  ", nil)
	require.Error(t, err)
}
