// Package extractor parses product pages into structured records.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookscrape/internal/scrape"
)

// ErrStructure is returned when the expected page structure is absent.
var ErrStructure = errors.New("expected page structure not found")

// Schema declares the selectors used to locate the title and the
// specification table, so target-site changes stay in configuration.
type Schema struct {
	Container string `mapstructure:"container"`
	Title     string `mapstructure:"title"`
	Table     string `mapstructure:"table"`
	Row       string `mapstructure:"row"`
	Label     string `mapstructure:"label"`
	Value     string `mapstructure:"value"`
}

// DefaultSchema matches the books.toscrape.com product page layout.
func DefaultSchema() Schema {
	return Schema{
		Container: ".product_main",
		Title:     "h1",
		Table:     ".table.table-striped",
		Row:       "tr",
		Label:     "th",
		Value:     "td",
	}
}

func (s Schema) withDefaults() Schema {
	def := DefaultSchema()
	if s.Container == "" {
		s.Container = def.Container
	}
	if s.Title == "" {
		s.Title = def.Title
	}
	if s.Table == "" {
		s.Table = def.Table
	}
	if s.Row == "" {
		s.Row = def.Row
	}
	if s.Label == "" {
		s.Label = def.Label
	}
	if s.Value == "" {
		s.Value = def.Value
	}
	return s
}

// Extractor is a pure HTML-to-record transformation driven by a Schema.
type Extractor struct {
	schema Schema
}

// New builds an Extractor, filling unset schema fields with defaults.
func New(schema Schema) *Extractor {
	return &Extractor{schema: schema.withDefaults()}
}

// Extract parses body and returns the product title plus one mapping entry
// per table row. Rows missing either cell are skipped and counted; a missing
// container or empty title fails the page with ErrStructure.
func (e *Extractor) Extract(body []byte) (scrape.Product, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return scrape.Product{}, fmt.Errorf("parse html: %w", err)
	}

	container := doc.Find(e.schema.Container).First()
	if container.Length() == 0 {
		return scrape.Product{}, fmt.Errorf("%w: selector %q", ErrStructure, e.schema.Container)
	}
	title := strings.TrimSpace(container.Find(e.schema.Title).First().Text())
	if title == "" {
		return scrape.Product{}, fmt.Errorf("%w: no title under %q", ErrStructure, e.schema.Container)
	}

	product := scrape.Product{
		Title:  title,
		Fields: make(map[string]string),
	}
	doc.Find(e.schema.Table).First().Find(e.schema.Row).Each(func(_ int, row *goquery.Selection) {
		label := row.Find(e.schema.Label).First()
		value := row.Find(e.schema.Value).First()
		if label.Length() == 0 || value.Length() == 0 {
			product.SkippedRows++
			return
		}
		product.Fields[strings.TrimSpace(label.Text())] = strings.TrimSpace(value.Text())
	})
	return product, nil
}
