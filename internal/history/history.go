// Package history persists each benchmark run's aggregate summary to a
// local SQLite database, so successive invocations can be compared
// over time. This supplements spec.md, which only prints to stdout.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one persisted benchmark run summary.
type Run struct {
	ID              string
	RanAt           time.Time
	InputCount      int
	Complexity      int
	ThreadCount     int
	JoinType        int
	TotalIterations uint64
	TotalHardWaits  int
	TotalSoftWaits  int
	ElapsedTicks    uint64
	ElapsedMS       int64
}

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	ran_at TIMESTAMP NOT NULL,
	input_count INTEGER NOT NULL,
	complexity INTEGER NOT NULL,
	thread_count INTEGER NOT NULL,
	join_type INTEGER NOT NULL,
	total_iterations INTEGER NOT NULL,
	total_hard_waits INTEGER NOT NULL,
	total_soft_waits INTEGER NOT NULL,
	elapsed_ticks INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one completed run, assigning it a fresh UUID.
func (s *Store) Record(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.RanAt.IsZero() {
		r.RanAt = time.Now()
	}

	_, err := s.db.Exec(`
INSERT INTO runs (id, ran_at, input_count, complexity, thread_count, join_type,
	total_iterations, total_hard_waits, total_soft_waits, elapsed_ticks, elapsed_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RanAt, r.InputCount, r.Complexity, r.ThreadCount, r.JoinType,
		r.TotalIterations, r.TotalHardWaits, r.TotalSoftWaits, r.ElapsedTicks, r.ElapsedMS)
	if err != nil {
		return "", fmt.Errorf("history: recording run: %w", err)
	}
	return r.ID, nil
}

// Recent returns up to limit most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
SELECT id, ran_at, input_count, complexity, thread_count, join_type,
	total_iterations, total_hard_waits, total_soft_waits, elapsed_ticks, elapsed_ms
FROM runs ORDER BY ran_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: querying recent runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.RanAt, &r.InputCount, &r.Complexity, &r.ThreadCount, &r.JoinType,
			&r.TotalIterations, &r.TotalHardWaits, &r.TotalSoftWaits, &r.ElapsedTicks, &r.ElapsedMS); err != nil {
			return nil, fmt.Errorf("history: scanning run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
