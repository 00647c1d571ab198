package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the outcome of processing one entry.
type Status string

const (
	StatusDecompiled Status = "decompiled"
	StatusCompiled   Status = "compiled"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Outcome is one row of a report.
type Outcome struct {
	Path   string
	Status Status
	Reason string
	At     time.Time
}

// Report records per-entry outcomes in an SQLite database.
type Report struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenReport opens or creates the report database at path.
func OpenReport(path string) (*Report, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS outcomes (
		path TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		reason TEXT NOT NULL,
		at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &Report{db: db}, nil
}

// Close closes the database connection.
func (r *Report) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Record stores the latest outcome for path. A nil report records nothing.
func (r *Report) Record(ctx context.Context, path string, status Status, reason string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO outcomes (path, status, reason, at) VALUES (?, ?, ?, ?)",
		path, string(status), reason, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// Outcomes returns every recorded outcome ordered by path.
func (r *Report) Outcomes(ctx context.Context) ([]Outcome, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT path, status, reason, at FROM outcomes ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var (
			o      Outcome
			status string
			at     int64
		)
		if err := rows.Scan(&o.Path, &status, &o.Reason, &at); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Status = Status(status)
		o.At = time.Unix(0, at)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Counts returns the number of outcomes per status.
func (r *Report) Counts(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM outcomes GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("counting outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}
