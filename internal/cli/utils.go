// Package cli provides CLI utilities for Chishiki.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/chishiki/internal/models"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteRetrievalResult writes a retrieval result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteRetrievalResult(w io.Writer, result *models.RetrievalResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeRetrievalResultText(w, result)
		return nil
	}
}

func writeRetrievalResultText(w io.Writer, result *models.RetrievalResult) {
	fmt.Fprintf(w, "\nFound %d results in %dms for %q\n\n",
		result.Metadata.TotalResults, result.Metadata.ExecutionTimeMs, result.Query.ProcessedQuery)
	for i, frag := range result.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		if frag.CombinedScore > 0 {
			fmt.Fprintf(w, "Rank: %d | Score: %.4f (Semantic: %.4f, Keyword: %.4f)\n",
				i+1, frag.CombinedScore, frag.Similarity, frag.KeywordScore)
		} else {
			fmt.Fprintf(w, "Rank: %d | Similarity: %.4f\n", i+1, frag.Similarity)
		}
		fmt.Fprintf(w, "Document: %s (%s)\n", frag.DocumentName, frag.DocumentID)
		for _, h := range frag.Highlights {
			fmt.Fprintf(w, "  ...%s...\n", h)
		}
	}
	if result.Context != "" {
		fmt.Fprintf(w, "\n--- Context (%d chars) ---\n%s\n", len(result.Context), result.Context)
	}
	if len(result.Citations) > 0 {
		fmt.Fprintln(w, "\n--- Citations ---")
		for _, c := range result.Citations {
			fmt.Fprintf(w, "  [%s] %s (relevance %.2f)\n", c.DocumentID, c.DocumentName, c.RelevanceScore)
		}
	}
}

// WriteTopDocuments writes the top-documents analytics table to w.
func WriteTopDocuments(w io.Writer, docs []models.DocumentUsage, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	fmt.Fprintf(w, "\n%-30s %-12s %s\n", "DOCUMENT", "USAGE", "AVG RELEVANCE")
	for _, d := range docs {
		name := d.DocumentName
		if name == "" {
			name = d.DocumentID
		}
		fmt.Fprintf(w, "%-30s %-12d %.3f\n", name, d.UsageCount, d.AverageRelevance)
	}
	return nil
}
