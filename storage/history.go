// Package storage provides SQLite persistence for the generation history.
//
// Information Hiding:
// - SQLite connection management hidden behind the store type
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// HistoryEntry is one recorded artifact: what was asked for and where the
// result landed on disk.
type HistoryEntry struct {
	ID        string
	Kind      string // "generated" or "edited"
	Prompt    string
	Model     string
	FilePath  string
	MimeType  string
	CreatedAt time.Time
}

// HistoryStore records generated artifacts in a SQLite database file.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens or creates the history database at the given path.
// Creates parent directories if they don't exist.
func OpenHistory(path string) (*HistoryStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return store, nil
}

// NewHistoryInMemory creates an in-memory store (useful for testing).
func NewHistoryInMemory() (*HistoryStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory history database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			prompt TEXT NOT NULL,
			model TEXT NOT NULL,
			file_path TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_artifacts_created
		ON artifacts(created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Record appends an artifact row. Missing IDs and timestamps are filled
// in; the assigned ID is returned.
func (s *HistoryStore) Record(ctx context.Context, entry HistoryEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO artifacts (id, kind, prompt, model, file_path, mime_type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.Kind, entry.Prompt, entry.Model, entry.FilePath, entry.MimeType, entry.CreatedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record artifact: %w", err)
	}
	return entry.ID, nil
}

// Recent returns the newest entries, most recent first. A non-positive
// limit defaults to 20.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, prompt, model, file_path, mime_type, created_at FROM artifacts ORDER BY created_at DESC, id LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{} // Start with empty slice, not nil
	for rows.Next() {
		var entry HistoryEntry
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.Kind, &entry.Prompt, &entry.Model, &entry.FilePath, &entry.MimeType, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entry.CreatedAt = time.Unix(createdAt, 0).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return entries, nil
}
