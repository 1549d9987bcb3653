package search

import (
	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/pkg/utils"
)

// citationTextLimit is the number of source characters a citation carries
// before truncation.
const citationTextLimit = 200

// GenerateCitations maps fragments 1:1 to display citations, preserving
// order. Callers are expected to pass already-ranked fragments; there is no
// filtering or re-ranking here. Metadata is copied so a citation never holds
// a reference into pipeline state.
func GenerateCitations(frags []*models.Fragment) []models.Citation {
	citations := make([]models.Citation, 0, len(frags))
	for _, frag := range frags {
		citations = append(citations, models.Citation{
			ID:             frag.ID,
			DocumentID:     frag.DocumentID,
			DocumentName:   frag.DocumentName,
			Text:           utils.Truncate(frag.Text, citationTextLimit),
			RelevanceScore: frag.RelevanceScore(),
			Metadata:       copyMetadata(frag.Metadata),
		})
	}
	return citations
}

func copyMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	dup := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		dup[k] = v
	}
	return dup
}
