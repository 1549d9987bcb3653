// Package keyword provides lexical relevance scoring with highlight extraction.
package keyword

import (
	"sort"
	"strings"

	"github.com/hyperjump/chishiki/internal/models"
)

const (
	// minTermLength is the shortest query term considered for matching.
	// Shorter terms behave like stop words and only add noise.
	minTermLength = 3
	// exactWindow is the highlight padding around a whole-query match.
	exactWindow = 30
	// termWindow is the highlight padding around a single term match.
	termWindow = 20
	// maxHighlights caps highlights per fragment, earliest matches first.
	maxHighlights = 3
)

// Score annotates fragments with a lexical relevance score in [0,1] and up to
// three highlight excerpts. In exact mode the whole normalized query must
// appear verbatim; in term mode the score is the fraction of query terms found
// as substrings. Pure and order-independent over its inputs; no I/O.
func Score(query string, frags []*models.Fragment, exactMatch bool) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if exactMatch {
		for _, frag := range frags {
			scoreExact(normalized, frag)
		}
		return
	}
	terms := strings.Fields(normalized)
	for _, frag := range frags {
		scoreTerms(terms, frag)
	}
}

func scoreExact(normalized string, frag *models.Fragment) {
	frag.KeywordScore = 0
	frag.Highlights = nil
	if normalized == "" {
		return
	}
	text := strings.ToLower(frag.Text)
	idx := strings.Index(text, normalized)
	if idx < 0 {
		return
	}
	frag.KeywordScore = 1.0
	frag.Highlights = []string{window(frag.Text, idx, len(normalized), exactWindow)}
}

type termHit struct {
	pos  int
	size int
}

func scoreTerms(terms []string, frag *models.Fragment) {
	frag.KeywordScore = 0
	frag.Highlights = nil
	if len(terms) == 0 {
		return
	}
	text := strings.ToLower(frag.Text)
	var hits []termHit
	for _, term := range terms {
		// Short terms are skipped for matching but stay in the denominator,
		// so they still dilute the score.
		if len(term) < minTermLength {
			continue
		}
		if idx := strings.Index(text, term); idx >= 0 {
			hits = append(hits, termHit{pos: idx, size: len(term)})
		}
	}
	frag.KeywordScore = float64(len(hits)) / float64(len(terms))
	if len(hits) == 0 {
		return
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	if len(hits) > maxHighlights {
		hits = hits[:maxHighlights]
	}
	highlights := make([]string, 0, len(hits))
	for _, hit := range hits {
		highlights = append(highlights, window(frag.Text, hit.pos, hit.size, termWindow))
	}
	frag.Highlights = highlights
}

// window returns a padded excerpt of text around a match, clamped to bounds.
func window(text string, start, matchLen, pad int) string {
	lo := start - pad
	if lo < 0 {
		lo = 0
	}
	hi := start + matchLen + pad
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}
