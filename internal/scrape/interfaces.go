package scrape

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResponse, error)
}

// Extractor turns a response body into a Product.
type Extractor interface {
	Extract(body []byte) (Product, error)
}

// Sink persists one Product and returns the path it was written to.
type Sink interface {
	SaveProduct(ctx context.Context, product Product) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
