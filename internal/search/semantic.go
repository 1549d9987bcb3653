package search

import (
	"context"
	"fmt"

	"github.com/hyperjump/chishiki/internal/filter"
	"github.com/hyperjump/chishiki/internal/models"
)

// Params describes a single search against the engine. KeywordWeight and
// ExactMatch only apply to hybrid search.
type Params struct {
	Query         string
	WorkspaceID   string
	Limit         int
	Threshold     float64
	Filters       map[string]interface{}
	KeywordWeight float64
	ExactMatch    bool
}

// SemanticSearch queries the external vector index and applies the metadata
// filter per fragment. Results keep the index's descending-similarity order;
// filtering can shrink the result count below the requested limit.
func (e *Engine) SemanticSearch(ctx context.Context, p Params) ([]*models.Fragment, error) {
	frags, err := e.index.Search(ctx, p.WorkspaceID, p.Query, p.Limit, p.Threshold)
	if err != nil {
		return nil, &UpstreamError{Query: p.Query, Err: err}
	}
	for _, frag := range frags {
		normalizeDocumentID(frag)
	}
	if len(p.Filters) == 0 {
		return frags, nil
	}
	flt, err := filter.ParseSpec(p.Filters)
	if err != nil {
		return nil, fmt.Errorf("invalid filter spec: %w", err)
	}
	kept := frags[:0]
	for _, frag := range frags {
		if flt.Matches(frag.Metadata) {
			kept = append(kept, frag)
		}
	}
	return kept, nil
}

// normalizeDocumentID fills Fragment.DocumentID from metadata when the index
// did not populate it, falling back to the fragment's own ID.
func normalizeDocumentID(frag *models.Fragment) {
	if frag.DocumentID != "" {
		return
	}
	for _, key := range []string{"documentId", "document_id"} {
		if v, ok := frag.Metadata[key].(string); ok && v != "" {
			frag.DocumentID = v
			return
		}
	}
	frag.DocumentID = frag.ID
}
