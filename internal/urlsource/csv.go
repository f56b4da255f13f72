// Package urlsource reads the list of target URLs from tabular input.
package urlsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingColumn is returned when the header row lacks the designated URL
// column. The run fails before any fetch is attempted.
var ErrMissingColumn = errors.New("url column not found in header")

// FromCSV reads every URL from the named column of a CSV file, preserving
// input order. Blank cells are skipped; an input with only a header row
// yields an empty slice.
func FromCSV(path, column string) ([]string, error) {
	if column == "" {
		column = "url"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url file %s: %w", path, err)
	}
	defer f.Close()

	return parse(f, column)
}

func parse(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	var urls []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if col >= len(row) {
			continue
		}
		u := strings.TrimSpace(row[col])
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}
