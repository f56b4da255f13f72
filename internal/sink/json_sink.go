// Package sink persists extracted product records to the filesystem.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"bookscrape/internal/scrape"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// SanitizeTitle replaces whitespace runs with underscores to form a
// filename-safe stem. Sanitizing an already-sanitized string is a no-op.
func SanitizeTitle(title string) string {
	return whitespaceRuns.ReplaceAllString(strings.TrimSpace(title), "_")
}

// JSONSink writes one <stem>.json per product under a root directory.
// Titles that sanitize to the same stem overwrite the prior file.
type JSONSink struct {
	root   string
	logger *zap.Logger
}

// New returns a sink rooted at dir, creating it when absent and verifying
// it is writable.
func New(root string, logger *zap.Logger) (*JSONSink, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("output path %s is not a directory", root)
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(root, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create output dir %s: %w", root, mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat output dir %s: %w", root, err)
	}

	probe := filepath.Join(root, ".writable_test")
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		return nil, fmt.Errorf("output dir %s is not writable: %w", root, err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}

	return &JSONSink{root: root, logger: logger}, nil
}

// SaveProduct serializes the field mapping as a flat JSON object and writes
// it to <sanitized-title>.json, returning the written path.
func (s *JSONSink) SaveProduct(ctx context.Context, product scrape.Product) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	stem := SanitizeTitle(product.Title)
	if stem == "" {
		return "", fmt.Errorf("product title sanitizes to empty stem")
	}

	payload, err := json.Marshal(product.Fields)
	if err != nil {
		return "", fmt.Errorf("marshal product fields: %w", err)
	}

	target := filepath.Join(s.root, stem+".json")
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return "", fmt.Errorf("write product %s: %w", target, err)
	}
	s.logger.Debug("product written", zap.String("path", target))
	return target, nil
}
