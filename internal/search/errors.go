package search

import "fmt"

// UpstreamError reports a failed call into the external vector index.
// It is not retried here; retries belong to the index client.
type UpstreamError struct {
	Query string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vector search failed for query %q: %v", e.Query, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
