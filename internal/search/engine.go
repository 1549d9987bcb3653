// Package search provides the retrieval engine: semantic search against the
// external vector index, hybrid reranking, context assembly, and citations.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/index"
	"github.com/hyperjump/chishiki/internal/models"
	"github.com/hyperjump/chishiki/internal/query"
)

// Tracker records fragment usage after a successful retrieval.
type Tracker interface {
	Track(frags []*models.Fragment, processed *models.ProcessedQuery, workspaceID string)
}

// Engine orchestrates the retrieval pipeline. All collaborators are injected;
// the engine holds no global state of its own.
type Engine struct {
	index     index.Client
	processor query.Processor
	tracker   Tracker
	logger    *zap.Logger
}

// NewEngine creates an engine with the given dependencies. tracker may be nil
// to disable usage analytics; logger may be nil for a no-op logger.
func NewEngine(client index.Client, processor query.Processor, tracker Tracker, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		index:     client,
		processor: processor,
		tracker:   tracker,
		logger:    logger,
	}
}

// RetrieveKnowledge turns a free-text query into a ranked, length-bounded
// context passage plus citations. Zero matching fragments is a valid result,
// not an error; only upstream index failures surface as errors.
func (e *Engine) RetrieveKnowledge(ctx context.Context, rawQuery string, opts models.RetrievalOptions) (*models.RetrievalResult, error) {
	startTime := time.Now()
	if strings.TrimSpace(rawQuery) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	processed, err := e.processor.Process(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("query processing failed: %w", err)
	}

	p := Params{
		Query:         processed.ProcessedQuery,
		WorkspaceID:   opts.WorkspaceID,
		Limit:         opts.Limit,
		Threshold:     opts.Threshold,
		Filters:       opts.Filters,
		KeywordWeight: opts.KeywordWeight,
		ExactMatch:    opts.ExactMatch,
	}

	var results []*models.Fragment
	if opts.Hybrid() {
		results, err = e.HybridSearch(ctx, p)
	} else {
		results, err = e.SemanticSearch(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	contextText := BuildContext(results, opts.MaxContextLength)
	citations := GenerateCitations(results)
	if !opts.WithMetadata() {
		for i := range citations {
			citations[i].Metadata = nil
		}
	}
	if !opts.WithSourceText() {
		for i := range citations {
			citations[i].Text = ""
		}
	}

	// Tracking happens only after a successful search, so a timeout wrapped
	// around the index call never leaves partial records behind.
	if e.tracker != nil {
		e.tracker.Track(results, processed, opts.WorkspaceID)
	}

	elapsed := time.Since(startTime).Milliseconds()
	e.logger.Debug("retrieval complete",
		zap.String("query_id", processed.ID),
		zap.Int("results", len(results)),
		zap.Int64("elapsed_ms", elapsed),
		zap.Bool("hybrid", opts.Hybrid()),
	)

	return &models.RetrievalResult{
		Query:     processed,
		Results:   results,
		Context:   contextText,
		Citations: citations,
		Metadata: models.ResultMetadata{
			TotalResults:    len(results),
			ExecutionTimeMs: elapsed,
			OptionsUsed:     opts,
		},
	}, nil
}
