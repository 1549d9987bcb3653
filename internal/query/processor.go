// Package query provides the preprocessing collaborator that turns a raw
// query string into the processed form the retrieval pipeline searches with.
package query

import (
	"strings"

	"github.com/google/uuid"

	"github.com/hyperjump/chishiki/internal/models"
)

// Processor rewrites a raw query before retrieval. The engine only consumes
// ProcessedQuery for searching and stores the whole object on the result.
type Processor interface {
	Process(raw string) (*models.ProcessedQuery, error)
}

// Expander optionally augments a processed query (synonyms, reformulation).
// It returns the expanded form, or "" to leave the query unexpanded.
type Expander func(processed string) string

// DefaultProcessor normalizes whitespace and casing and assigns a query ID.
type DefaultProcessor struct {
	expander Expander
}

// NewProcessor creates a DefaultProcessor. expander may be nil.
func NewProcessor(expander Expander) *DefaultProcessor {
	return &DefaultProcessor{expander: expander}
}

// Process implements Processor.
func (p *DefaultProcessor) Process(raw string) (*models.ProcessedQuery, error) {
	processed := strings.Join(strings.Fields(raw), " ")
	pq := &models.ProcessedQuery{
		ID:             uuid.NewString(),
		OriginalQuery:  raw,
		ProcessedQuery: processed,
	}
	if p.expander != nil {
		pq.ExpandedQuery = p.expander(processed)
	}
	return pq, nil
}
