// Package convlog persists the bounded chat conversation log.
//
// The log is append-only and trimmed to the most recent MaxRecords entries
// (oldest dropped first). Appends go through a single-writer mutex so
// concurrent requests never interleave writes.
package convlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// MaxRecords is the maximum number of conversation entries retained.
const MaxRecords = 100

// Roles recorded in the log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Record is one user or assistant turn. IDs are monotonic and derived from
// the creation time in milliseconds, so they double as a coarse timestamp.
type Record struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store provides durable access to the conversation log.
type Store struct {
	db *sql.DB

	mu     sync.Mutex // Single-writer discipline for appends
	lastID int64
}

// NewStore creates a Store backed by the given database. Run Migrations
// against the shared store before use.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append adds one turn to the log and trims it to MaxRecords. The entire
// append-and-trim runs under the writer mutex.
func (s *Store) Append(ctx context.Context, role, content string) (Record, error) {
	if role != RoleUser && role != RoleAssistant {
		return Record{}, fmt.Errorf("invalid conversation role %q", role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	id := now.UnixMilli()
	// Two turns in the same millisecond still get distinct, increasing IDs.
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	rec := Record{ID: id, Role: role, Content: content, Timestamp: now}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO conversation_log (id, role, content, created_at) VALUES (?, ?, ?, ?)",
		rec.ID, rec.Role, rec.Content, rec.Timestamp,
	)
	if err != nil {
		return Record{}, fmt.Errorf("append conversation record: %w", err)
	}

	if err := s.trim(ctx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// trim drops the oldest entries beyond MaxRecords. Must be called with the
// writer mutex held.
func (s *Store) trim(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM conversation_log
		WHERE id NOT IN (
			SELECT id FROM conversation_log ORDER BY id DESC LIMIT ?
		)`,
		MaxRecords,
	)
	if err != nil {
		return fmt.Errorf("trim conversation log: %w", err)
	}
	return nil
}

// List returns up to limit records in chronological order. A limit <= 0 or
// greater than MaxRecords returns the full retained log.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > MaxRecords {
		limit = MaxRecords
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, created_at FROM (
			SELECT id, role, content, created_at
			FROM conversation_log ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversation log: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Role, &r.Content, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan conversation record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the number of retained records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversation_log").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count conversation log: %w", err)
	}
	return n, nil
}
