package search

import (
	"sort"
	"strings"

	"github.com/hyperjump/chishiki/internal/models"
)

// Separator joins fragments in the assembled context. Its length counts
// against the context length budget.
const Separator = "\n\n---\n\n"

// BuildContext greedily packs the highest-similarity fragments into a single
// passage of at most maxLength bytes. Fragments that would overflow the budget
// are skipped, except that when nothing has been packed yet the first
// candidate is truncated to fill the budget, so the output is non-empty
// whenever at least one fragment exists and maxLength > 0.
//
// Ordering is always by raw similarity, even for hybrid results carrying a
// combined score. Deterministic; no I/O.
func BuildContext(frags []*models.Fragment, maxLength int) string {
	return buildContextBy(frags, maxLength, func(f *models.Fragment) float64 {
		return f.Similarity
	})
}

func buildContextBy(frags []*models.Fragment, maxLength int, key func(*models.Fragment) float64) string {
	if len(frags) == 0 || maxLength <= 0 {
		return ""
	}
	sorted := make([]*models.Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})

	var b strings.Builder
	for _, frag := range sorted {
		needed := len(frag.Text)
		if b.Len() > 0 {
			needed += len(Separator)
		}
		if b.Len()+needed > maxLength {
			if b.Len() == 0 {
				return frag.Text[:maxLength]
			}
			continue
		}
		if b.Len() > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(frag.Text)
	}
	return b.String()
}
