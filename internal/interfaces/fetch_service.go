package interfaces

import (
	"context"
	"encoding/json"
)

// FetchResult is the outcome of retrieving one source URL. Exactly one of
// Payload or Err is set.
type FetchResult struct {
	URL     string
	Payload json.RawMessage
	Err     error
}

// FetchService retrieves raw JSON payloads from remote sources.
type FetchService interface {
	// FetchAll retrieves every URL concurrently and returns one result per
	// dispatched URL, in input order. Empty or whitespace-only URLs are
	// skipped before dispatch. A failing source never aborts its siblings;
	// callers inspect each result individually.
	FetchAll(ctx context.Context, urls []string) []FetchResult

	// Fetch retrieves a single URL.
	Fetch(ctx context.Context, url string) FetchResult
}
