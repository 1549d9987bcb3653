package search

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperjump/chishiki/internal/models"
)

func TestHybridWidensCandidatePool(t *testing.T) {
	idx := &stubIndex{}
	e := newTestEngine(idx)
	_, err := e.HybridSearch(context.Background(), Params{Query: "q", WorkspaceID: "ws1", Limit: 5, Threshold: 0.7})
	require.NoError(t, err)
	require.GreaterOrEqual(t, idx.gotLimit, 20, "pool must be at least 20 wide")
	require.LessOrEqual(t, idx.gotThreshold, 0.6, "threshold must be relaxed by 0.1")

	_, err = e.HybridSearch(context.Background(), Params{Query: "q", WorkspaceID: "ws1", Limit: 10, Threshold: 0.55})
	require.NoError(t, err)
	require.Equal(t, 30, idx.gotLimit, "3x the requested limit once past the minimum")
	require.Equal(t, 0.5, idx.gotThreshold, "relaxed threshold floors at 0.5")
}

func TestCombinedScoreFormula(t *testing.T) {
	// similarity=0.8, keywordScore=0.4, weight=0.3 -> 0.7*0.8 + 0.3*0.4 = 0.68
	idx := &stubIndex{frags: []*models.Fragment{
		// Query has 5 terms, text contains 2: keyword score 0.4.
		{ID: "a", Text: "alpha bravo", Similarity: 0.8},
	}}
	e := newTestEngine(idx)
	got, err := e.HybridSearch(context.Background(), Params{
		Query: "alpha bravo charlie delta echo", WorkspaceID: "ws1",
		Limit: 5, Threshold: 0.7, KeywordWeight: 0.3,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 0.4, got[0].KeywordScore, 1e-12)
	require.InDelta(t, 0.68, got[0].CombinedScore, 1e-12)
}

func TestHybridMonotonicityInKeywordWeight(t *testing.T) {
	run := func(weight float64) float64 {
		idx := &stubIndex{frags: []*models.Fragment{
			// keyword score 1.0 > similarity 0.6
			{ID: "a", Text: "alpha", Similarity: 0.6},
		}}
		e := newTestEngine(idx)
		got, err := e.HybridSearch(context.Background(), Params{
			Query: "alpha", WorkspaceID: "ws1", Limit: 5, Threshold: 0.7, KeywordWeight: weight,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		return got[0].CombinedScore
	}
	require.Greater(t, run(0.8), run(0.2), "combined score should rise with weight when keyword > similarity")

	runMiss := func(weight float64) float64 {
		idx := &stubIndex{frags: []*models.Fragment{
			// keyword score 0.0 < similarity 0.6
			{ID: "a", Text: "unrelated text", Similarity: 0.6},
		}}
		e := newTestEngine(idx)
		got, err := e.HybridSearch(context.Background(), Params{
			Query: "alpha", WorkspaceID: "ws1", Limit: 5, Threshold: 0.7, KeywordWeight: weight,
		})
		require.NoError(t, err)
		return got[0].CombinedScore
	}
	require.Less(t, runMiss(0.8), runMiss(0.2), "combined score should fall with weight when keyword < similarity")
}

func TestHybridStableTieBreak(t *testing.T) {
	idx := &stubIndex{frags: []*models.Fragment{
		{ID: "first", Text: "nothing in common", Similarity: 0.8},
		{ID: "second", Text: "nothing shared either", Similarity: 0.8},
		{ID: "third", Text: "still no overlap", Similarity: 0.8},
	}}
	e := newTestEngine(idx)
	got, err := e.HybridSearch(context.Background(), Params{
		Query: "zzz", WorkspaceID: "ws1", Limit: 3, Threshold: 0.7, KeywordWeight: 0.3,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "first", got[0].ID, "ties must keep candidate order")
	require.Equal(t, "second", got[1].ID)
	require.Equal(t, "third", got[2].ID)
}

func TestHybridRerankScenario(t *testing.T) {
	// Query of 10 terms; texts contain 2, 9, and 5 of them, so keyword scores
	// are 0.2, 0.9, 0.5. With similarities 0.9, 0.6, 0.75 and weight 0.5 the
	// combined scores are 0.55, 0.75, 0.625; limit 2 keeps frag2 then frag3.
	terms := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"}
	queryText := ""
	for i, term := range terms {
		if i > 0 {
			queryText += " "
		}
		queryText += term
	}
	join := func(n int) string {
		out := ""
		for i := 0; i < n; i++ {
			if i > 0 {
				out += " "
			}
			out += terms[i]
		}
		return out
	}
	idx := &stubIndex{frags: []*models.Fragment{
		{ID: "frag1", Text: join(2), Similarity: 0.9},
		{ID: "frag2", Text: join(9), Similarity: 0.6},
		{ID: "frag3", Text: join(5), Similarity: 0.75},
	}}
	e := newTestEngine(idx)
	got, err := e.HybridSearch(context.Background(), Params{
		Query: queryText, WorkspaceID: "ws1", Limit: 2, Threshold: 0.7, KeywordWeight: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, got, 2, "result must be truncated to the caller's limit")
	require.Equal(t, "frag2", got[0].ID)
	require.Equal(t, "frag3", got[1].ID)
	require.True(t, math.Abs(got[0].CombinedScore-0.75) < 1e-12)
	require.True(t, math.Abs(got[1].CombinedScore-0.625) < 1e-12)
}

func TestHybridPropagatesUpstreamError(t *testing.T) {
	e := newTestEngine(&stubIndex{err: context.DeadlineExceeded})
	_, err := e.HybridSearch(context.Background(), Params{Query: "q", WorkspaceID: "ws1", Limit: 5, Threshold: 0.7})
	require.Error(t, err)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
}
