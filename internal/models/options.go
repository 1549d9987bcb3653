package models

import "fmt"

// Default values applied by RetrievalOptions.Validate.
const (
	DefaultLimit            = 5
	DefaultThreshold        = 0.7
	DefaultKeywordWeight    = 0.3
	DefaultMaxContextLength = 2000
)

// RetrievalOptions controls a single retrieval request.
type RetrievalOptions struct {
	WorkspaceID       string                 `json:"workspace_id" validate:"required"`
	Limit             int                    `json:"limit,omitempty"`
	Threshold         float64                `json:"threshold,omitempty"`
	UseHybridSearch   *bool                  `json:"use_hybrid_search,omitempty"`
	KeywordWeight     float64                `json:"keyword_weight,omitempty" validate:"gte=0,lte=1"`
	ExactMatch        bool                   `json:"exact_match,omitempty"`
	IncludeMetadata   *bool                  `json:"include_metadata,omitempty"`
	IncludeSourceText *bool                  `json:"include_source_text,omitempty"`
	MaxContextLength  int                    `json:"max_context_length,omitempty"`
	Filters           map[string]interface{} `json:"filters,omitempty"`
}

// Validate ensures the options have valid fields and sets defaults.
// Boolean options use pointers so an explicit false survives JSON decoding;
// nil means "use the default" (hybrid on, metadata and source text included).
func (o *RetrievalOptions) Validate() error {
	if o.WorkspaceID == "" {
		return fmt.Errorf("workspace_id cannot be empty")
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.KeywordWeight <= 0 {
		o.KeywordWeight = DefaultKeywordWeight
	}
	if o.KeywordWeight > 1 {
		o.KeywordWeight = 1
	}
	if o.MaxContextLength <= 0 {
		o.MaxContextLength = DefaultMaxContextLength
	}
	if o.UseHybridSearch == nil {
		t := true
		o.UseHybridSearch = &t
	}
	if o.IncludeMetadata == nil {
		t := true
		o.IncludeMetadata = &t
	}
	if o.IncludeSourceText == nil {
		t := true
		o.IncludeSourceText = &t
	}
	return nil
}

// Hybrid reports whether hybrid search is enabled (defaults to true).
func (o *RetrievalOptions) Hybrid() bool {
	return o.UseHybridSearch == nil || *o.UseHybridSearch
}

// WithMetadata reports whether citations should carry metadata.
func (o *RetrievalOptions) WithMetadata() bool {
	return o.IncludeMetadata == nil || *o.IncludeMetadata
}

// WithSourceText reports whether citations should carry source text.
func (o *RetrievalOptions) WithSourceText() bool {
	return o.IncludeSourceText == nil || *o.IncludeSourceText
}
