package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/chishiki/internal/models"
)

func sampleResult() *models.RetrievalResult {
	return &models.RetrievalResult{
		Query: &models.ProcessedQuery{ID: "q1", OriginalQuery: "hybrid search", ProcessedQuery: "hybrid search"},
		Results: []*models.Fragment{
			{ID: "f1", DocumentID: "d1", DocumentName: "guide.md", Text: "passage", Similarity: 0.9, KeywordScore: 0.5, CombinedScore: 0.78, Highlights: []string{"passage"}},
		},
		Context: "passage",
		Citations: []models.Citation{
			{ID: "f1", DocumentID: "d1", DocumentName: "guide.md", Text: "passage", RelevanceScore: 0.78},
		},
		Metadata: models.ResultMetadata{TotalResults: 1, ExecutionTimeMs: 12},
	}
}

func TestWriteRetrievalResultText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, sampleResult(), OutputText); err != nil {
		t.Fatalf("WriteRetrievalResult failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Found 1 results", "guide.md", "0.7800", "Citations"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRetrievalResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, sampleResult(), OutputJSON); err != nil {
		t.Fatalf("WriteRetrievalResult failed: %v", err)
	}
	var decoded models.RetrievalResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output should round-trip: %v", err)
	}
	if decoded.Metadata.TotalResults != 1 {
		t.Errorf("decoded = %+v", decoded.Metadata)
	}
}

func TestWriteTopDocuments(t *testing.T) {
	var buf bytes.Buffer
	docs := []models.DocumentUsage{{DocumentID: "d1", DocumentName: "guide.md", UsageCount: 4, AverageRelevance: 0.8}}
	if err := WriteTopDocuments(&buf, docs, OutputText); err != nil {
		t.Fatalf("WriteTopDocuments failed: %v", err)
	}
	if !strings.Contains(buf.String(), "guide.md") {
		t.Errorf("output missing document name:\n%s", buf.String())
	}
}
