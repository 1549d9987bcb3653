package models

import "time"

// UsageRecord is a logged event capturing that a document fragment was
// retrieved for a query. Records are append-only and owned by the analytics
// tracker; WorkspaceID scopes per-workspace aggregates.
type UsageRecord struct {
	DocumentID     string    `json:"document_id"`
	DocumentName   string    `json:"document_name"`
	WorkspaceID    string    `json:"workspace_id"`
	QueryID        string    `json:"query_id"`
	QueryText      string    `json:"query_text"`
	Timestamp      time.Time `json:"timestamp"`
	RelevanceScore float64   `json:"relevance_score"`
}

// DayCount is a per-UTC-day usage bucket.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// QueryCount is a distinct query text with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// UsageSummary aggregates the usage log, optionally filtered to one document.
type UsageSummary struct {
	TotalUsage       int          `json:"total_usage"`
	AverageRelevance float64      `json:"average_relevance"`
	UsageOverTime    []DayCount   `json:"usage_over_time"`
	TopQueries       []QueryCount `json:"top_queries"`
}

// DocumentUsage is the per-document aggregate returned by top-documents queries.
type DocumentUsage struct {
	DocumentID       string  `json:"document_id"`
	DocumentName     string  `json:"document_name"`
	UsageCount       int     `json:"usage_count"`
	AverageRelevance float64 `json:"average_relevance"`
}
