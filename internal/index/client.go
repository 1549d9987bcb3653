// Package index provides the client boundary to the external vector index.
// The engine treats the index as an already-trained nearest-neighbor service:
// it never re-sorts, re-thresholds, or retries what the index returns.
package index

import (
	"context"

	"github.com/hyperjump/chishiki/internal/models"
)

// Client is the contract the external vector index fulfils. Results are
// ordered by descending similarity and already respect the threshold.
type Client interface {
	Search(ctx context.Context, workspaceID, query string, limit int, threshold float64) ([]*models.Fragment, error)
}
