// Package fetcher retrieves raw JSON payloads from remote geo-data
// sources, concurrently and with per-source failure isolation.
package fetcher

import "fmt"

// FetchError represents a failed retrieval of a single source. It is
// non-fatal to the batch: sibling fetches always run to completion.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed: %s (status: %d)", e.URL, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s failed: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
