// Package models defines core data structures for fragments, queries, and retrieval results.
package models

// Fragment is a ranked chunk of document text, the atomic unit flowing
// through the retrieval pipeline. Similarity comes from the external vector
// index; KeywordScore and CombinedScore are filled in by the keyword scorer
// and the hybrid merger respectively and are zero until those stages run.
type Fragment struct {
	ID            string                 `json:"id"`
	DocumentID    string                 `json:"document_id"`
	DocumentName  string                 `json:"document_name"`
	Text          string                 `json:"text"`
	Similarity    float64                `json:"similarity"`
	KeywordScore  float64                `json:"keyword_score,omitempty"`
	CombinedScore float64                `json:"combined_score,omitempty"`
	Highlights    []string               `json:"highlights,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// RelevanceScore returns the combined score when the hybrid merger has run,
// otherwise the raw semantic similarity.
func (f *Fragment) RelevanceScore() float64 {
	if f.CombinedScore > 0 {
		return f.CombinedScore
	}
	return f.Similarity
}

// Citation is a read-only, display-oriented view of a Fragment. Text is
// truncated to 200 characters with an ellipsis. A Citation holds no
// back-reference to mutable state.
type Citation struct {
	ID             string                 `json:"id"`
	DocumentID     string                 `json:"document_id"`
	DocumentName   string                 `json:"document_name"`
	Text           string                 `json:"text,omitempty"`
	RelevanceScore float64                `json:"relevance_score"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// ProcessedQuery is the output of the query preprocessing collaborator.
type ProcessedQuery struct {
	ID             string `json:"id"`
	OriginalQuery  string `json:"original_query"`
	ProcessedQuery string `json:"processed_query"`
	ExpandedQuery  string `json:"expanded_query,omitempty"`
}

// ResultMetadata describes how a retrieval was executed.
type ResultMetadata struct {
	TotalResults    int              `json:"total_results"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
	OptionsUsed     RetrievalOptions `json:"options_used"`
}

// RetrievalResult is the immutable outcome of a single retrieval call.
type RetrievalResult struct {
	Query     *ProcessedQuery `json:"query"`
	Results   []*Fragment     `json:"results"`
	Context   string          `json:"context"`
	Citations []Citation      `json:"citations"`
	Metadata  ResultMetadata  `json:"metadata"`
}
