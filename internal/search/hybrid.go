package search

import (
	"context"
	"sort"

	"github.com/hyperjump/chishiki/internal/keyword"
	"github.com/hyperjump/chishiki/internal/models"
)

// Candidate pool widening for hybrid reranking. A fragment can score low on
// semantic similarity yet high on lexical match; a narrow semantic pre-filter
// would hide it from the rerank step entirely.
const (
	poolMultiplier   = 3
	minCandidatePool = 20
	thresholdRelax   = 0.1
	thresholdFloor   = 0.5
)

// HybridSearch runs semantic search over a widened candidate pool, reranks by
// a weighted blend of similarity and keyword score, and truncates to the
// caller's limit. Metadata filters are applied once, before keyword scoring.
// Ties keep the candidate order from the index (stable sort).
func (e *Engine) HybridSearch(ctx context.Context, p Params) ([]*models.Fragment, error) {
	wide := p
	wide.Limit = p.Limit * poolMultiplier
	if wide.Limit < minCandidatePool {
		wide.Limit = minCandidatePool
	}
	wide.Threshold = p.Threshold - thresholdRelax
	if wide.Threshold < thresholdFloor {
		wide.Threshold = thresholdFloor
	}

	candidates, err := e.SemanticSearch(ctx, wide)
	if err != nil {
		return nil, err
	}

	keyword.Score(p.Query, candidates, p.ExactMatch)

	w := p.KeywordWeight
	for _, frag := range candidates {
		frag.CombinedScore = (1-w)*frag.Similarity + w*frag.KeywordScore
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CombinedScore > candidates[j].CombinedScore
	})

	if p.Limit > 0 && len(candidates) > p.Limit {
		candidates = candidates[:p.Limit]
	}
	return candidates, nil
}
