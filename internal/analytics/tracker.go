// Package analytics provides the append-only usage log and its aggregate
// queries. The log is bounded, so aggregates are recomputed on every call
// rather than cached.
package analytics

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/models"
)

const (
	// DefaultMaxRecords caps the in-memory usage log. Oldest records are
	// discarded first (FIFO, no touch operation).
	DefaultMaxRecords = 10000
	// DefaultTopDocuments is the default limit for top-document queries.
	DefaultTopDocuments = 10

	topQueryLimit = 10
)

// Store persists usage records behind the in-memory log. Appends are
// best-effort; the in-memory log stays authoritative for aggregates.
type Store interface {
	Append(records []models.UsageRecord) error
	Recent(limit int) ([]models.UsageRecord, error)
}

// Tracker owns the usage log. Construct one per process and inject it;
// there is no package-level instance.
type Tracker struct {
	mu         sync.RWMutex
	records    []models.UsageRecord
	maxRecords int
	store      Store
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMaxRecords overrides the FIFO cap.
func WithMaxRecords(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.maxRecords = n
		}
	}
}

// WithStore attaches a persistent store.
func WithStore(s Store) Option {
	return func(t *Tracker) { t.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker with an empty log.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		maxRecords: DefaultMaxRecords,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Restore warms the in-memory log from the persistent store, keeping at most
// the cap's worth of most recent records. No-op without a store.
func (t *Tracker) Restore() error {
	if t.store == nil {
		return nil
	}
	records, err := t.store.Recent(t.maxRecords)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.records = records
	t.mu.Unlock()
	return nil
}

// Track appends one usage record per fragment with the current timestamp,
// then trims the oldest records beyond the cap. Concurrent callers may
// interleave their batches but never corrupt or lose records.
func (t *Tracker) Track(frags []*models.Fragment, processed *models.ProcessedQuery, workspaceID string) {
	if len(frags) == 0 || processed == nil {
		return
	}
	now := t.now()
	batch := make([]models.UsageRecord, 0, len(frags))
	for _, frag := range frags {
		batch = append(batch, models.UsageRecord{
			DocumentID:     frag.DocumentID,
			DocumentName:   frag.DocumentName,
			WorkspaceID:    workspaceID,
			QueryID:        processed.ID,
			QueryText:      processed.ProcessedQuery,
			Timestamp:      now,
			RelevanceScore: frag.RelevanceScore(),
		})
	}

	t.mu.Lock()
	t.records = append(t.records, batch...)
	if excess := len(t.records) - t.maxRecords; excess > 0 {
		// Copy so the trimmed prefix's backing array can be collected.
		trimmed := make([]models.UsageRecord, t.maxRecords)
		copy(trimmed, t.records[excess:])
		t.records = trimmed
	}
	t.mu.Unlock()

	if t.store != nil {
		if err := t.store.Append(batch); err != nil {
			t.logger.Warn("failed to persist usage records", zap.Error(err))
		}
	}
}

// Len returns the current log length.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// filtered returns a snapshot of the log, optionally scoped to one document.
func (t *Tracker) filtered(documentID string) []models.UsageRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if documentID == "" {
		out := make([]models.UsageRecord, len(t.records))
		copy(out, t.records)
		return out
	}
	var out []models.UsageRecord
	for _, r := range t.records {
		if r.DocumentID == documentID {
			out = append(out, r)
		}
	}
	return out
}

// TotalUsage returns the record count, optionally for one document.
func (t *Tracker) TotalUsage(documentID string) int {
	return len(t.filtered(documentID))
}

// AverageRelevance returns the mean relevance score of the (optionally
// document-scoped) log, or 0 when it is empty.
func (t *Tracker) AverageRelevance(documentID string) float64 {
	records := t.filtered(documentID)
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.RelevanceScore
	}
	return sum / float64(len(records))
}

// UsageOverTime buckets records by UTC calendar day, ascending by date.
func (t *Tracker) UsageOverTime(documentID string) []models.DayCount {
	counts := make(map[string]int)
	for _, r := range t.filtered(documentID) {
		counts[r.Timestamp.UTC().Format("2006-01-02")]++
	}
	out := make([]models.DayCount, 0, len(counts))
	for date, count := range counts {
		out = append(out, models.DayCount{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// TopQueries returns the ten most frequent distinct query texts, descending
// by occurrence count.
func (t *Tracker) TopQueries(documentID string) []models.QueryCount {
	counts := make(map[string]int)
	for _, r := range t.filtered(documentID) {
		counts[r.QueryText]++
	}
	out := make([]models.QueryCount, 0, len(counts))
	for q, count := range counts {
		out = append(out, models.QueryCount{Query: q, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > topQueryLimit {
		out = out[:topQueryLimit]
	}
	return out
}

// Summary combines the aggregate queries into one view, optionally scoped to
// a document.
func (t *Tracker) Summary(documentID string) models.UsageSummary {
	return models.UsageSummary{
		TotalUsage:       t.TotalUsage(documentID),
		AverageRelevance: t.AverageRelevance(documentID),
		UsageOverTime:    t.UsageOverTime(documentID),
		TopQueries:       t.TopQueries(documentID),
	}
}

// TopDocuments aggregates usage count and mean relevance per document,
// descending by usage count. A non-empty workspaceID scopes the aggregate to
// that workspace. limit <= 0 uses DefaultTopDocuments.
func (t *Tracker) TopDocuments(limit int, workspaceID string) []models.DocumentUsage {
	if limit <= 0 {
		limit = DefaultTopDocuments
	}

	type agg struct {
		name  string
		count int
		sum   float64
	}
	byDoc := make(map[string]*agg)
	t.mu.RLock()
	for _, r := range t.records {
		if workspaceID != "" && r.WorkspaceID != workspaceID {
			continue
		}
		a, ok := byDoc[r.DocumentID]
		if !ok {
			a = &agg{}
			byDoc[r.DocumentID] = a
		}
		a.name = r.DocumentName
		a.count++
		a.sum += r.RelevanceScore
	}
	t.mu.RUnlock()

	out := make([]models.DocumentUsage, 0, len(byDoc))
	for id, a := range byDoc {
		out = append(out, models.DocumentUsage{
			DocumentID:       id,
			DocumentName:     a.name,
			UsageCount:       a.count,
			AverageRelevance: a.sum / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].DocumentID < out[j].DocumentID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
