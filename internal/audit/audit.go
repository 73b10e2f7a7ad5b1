// Package audit records every command the agent executed or was refused
// permission to execute.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome classifies what happened to a command.
type Outcome string

const (
	OutcomeExecuted Outcome = "executed"
	OutcomeDeclined Outcome = "declined"
	OutcomeFailed   Outcome = "failed"
)

// Entry is one audited command.
type Entry struct {
	ID        int64         `json:"id"`
	SessionID string        `json:"session_id"`
	Command   string        `json:"command"`
	Dangerous bool          `json:"dangerous"`
	Keywords  string        `json:"keywords,omitempty"`
	Outcome   Outcome       `json:"outcome"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	Time      time.Time     `json:"time"`
}

const schema = `
CREATE TABLE IF NOT EXISTS commands (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	command     TEXT NOT NULL,
	dangerous   INTEGER NOT NULL DEFAULT 0,
	keywords    TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	exit_code   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commands_session ON commands(session_id);
`

// Store is a SQLite-backed audit trail.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the audit database at path. The special
// path ":memory:" keeps the trail in memory.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive across calls.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends e to the trail. A zero Time is set to now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commands (session_id, command, dangerous, keywords, outcome, exit_code, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Command, e.Dangerous, e.Keywords, string(e.Outcome),
		e.ExitCode, e.Duration.Milliseconds(), e.Error, e.Time.UnixMilli())
	if err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	SessionID string
	Limit     int
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT id, session_id, command, dangerous, keywords, outcome, exit_code, duration_ms, error, created_at
		FROM commands`
	var args []any
	if f.SessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, f.SessionID)
	}
	query += ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			outcome   string
			durMillis int64
			created   int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Command, &e.Dangerous, &e.Keywords,
			&outcome, &e.ExitCode, &durMillis, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.Outcome = Outcome(outcome)
		e.Duration = time.Duration(durMillis) * time.Millisecond
		e.Time = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
