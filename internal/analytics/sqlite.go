package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/chishiki/internal/models"
)

// SQLiteStore persists usage records append-only in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS usage_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id TEXT NOT NULL,
		document_name TEXT,
		workspace_id TEXT,
		query_id TEXT,
		query_text TEXT,
		timestamp TIMESTAMP NOT NULL,
		relevance_score REAL
	);

	CREATE INDEX IF NOT EXISTS idx_usage_document_id ON usage_records(document_id);
	CREATE INDEX IF NOT EXISTS idx_usage_workspace_id ON usage_records(workspace_id);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append inserts a batch of records in one transaction.
func (s *SQLiteStore) Append(records []models.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO usage_records
		 (document_id, document_name, workspace_id, query_id, query_text, timestamp, relevance_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.Exec(
			r.DocumentID, r.DocumentName, r.WorkspaceID,
			r.QueryID, r.QueryText, r.Timestamp, r.RelevanceScore,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert usage record: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit of the most recent records in insertion order,
// oldest first.
func (s *SQLiteStore) Recent(limit int) ([]models.UsageRecord, error) {
	rows, err := s.db.Query(
		`SELECT document_id, document_name, workspace_id, query_id, query_text, timestamp, relevance_score
		 FROM usage_records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		if err := rows.Scan(
			&r.DocumentID, &r.DocumentName, &r.WorkspaceID,
			&r.QueryID, &r.QueryText, &r.Timestamp, &r.RelevanceScore,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Newest-first from the query; flip to insertion order.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
