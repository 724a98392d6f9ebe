//nolint:tagliatelle // superior snake-case yo.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ethpandaops/raid-crawler/internal/notify"
)

// Outcome is how a search run ended.
type Outcome string

const (
	OutcomeRunning   Outcome = "running"
	OutcomeMatched   Outcome = "matched"
	OutcomeChanged   Outcome = "changed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Run describes one search run.
type Run struct {
	ID         string        `json:"id"`
	Console    string        `json:"console"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Outcome    Outcome       `json:"outcome"`
	Tries      uint64        `json:"tries"`
	Successes  uint64        `json:"successes"`
	Resets     uint64        `json:"resets"`
	Elapsed    time.Duration `json:"elapsed"`
	Error      string        `json:"error,omitempty"`
}

// Match is one persisted notification.
type Match struct {
	RunID   string              `json:"run_id"`
	FoundAt time.Time           `json:"found_at"`
	Detail  notify.Notification `json:"detail"`
}

// Store persists search runs and their matches in SQLite.
type Store struct {
	log logrus.FieldLogger
	db  *sql.DB
}

// Open opens or creates the database at path.
func Open(log logrus.FieldLogger, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The driver serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := createSchemas(db); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}

	return &Store{log: log.WithField("component", "history"), db: db}, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			console TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			outcome TEXT NOT NULL,
			tries INTEGER NOT NULL DEFAULT 0,
			successes INTEGER NOT NULL DEFAULT 0,
			resets INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			found_at DATETIME NOT NULL,
			filter TEXT NOT NULL,
			seed INTEGER NOT NULL,
			detail TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_run_id ON matches(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunStarted records a new run.
func (s *Store) RunStarted(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, console, started_at, outcome) VALUES (?, ?, ?, ?)`,
		run.ID, run.Console, run.StartedAt.UTC(), string(OutcomeRunning),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// RunFinished stores the final statistics of a run.
func (s *Store) RunFinished(ctx context.Context, run Run) error {
	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, outcome = ?, tries = ?, successes = ?, resets = ?, elapsed_ms = ?, error = ?
		WHERE id = ?`,
		finished, string(run.Outcome), run.Tries, run.Successes, run.Resets,
		run.Elapsed.Milliseconds(), run.Error, run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}

	return nil
}

// MatchFound records a notification for a run.
func (s *Store) MatchFound(ctx context.Context, runID string, n notify.Notification) error {
	detail, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode match: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matches (run_id, found_at, filter, seed, detail) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), n.Filter, int64(n.Raid.Seed), string(detail),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, console, started_at, finished_at, outcome, tries, successes, resets, elapsed_ms, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)

	for rows.Next() {
		var (
			run       Run
			finished  sql.NullTime
			outcome   string
			elapsedMS int64
		)

		if err := rows.Scan(&run.ID, &run.Console, &run.StartedAt, &finished, &outcome,
			&run.Tries, &run.Successes, &run.Resets, &elapsedMS, &run.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}

		run.Outcome = Outcome(outcome)
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Totals returns the summed tries and successes of every run on console.
func (s *Store) Totals(ctx context.Context, console string) (tries, successes uint64, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(tries), 0), COALESCE(SUM(successes), 0) FROM runs WHERE console = ?`,
		console).Scan(&tries, &successes)
	if err != nil {
		return 0, 0, fmt.Errorf("query totals: %w", err)
	}

	return tries, successes, nil
}

// Matches returns the matches of a run in the order they were found.
func (s *Store) Matches(ctx context.Context, runID string) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, found_at, detail FROM matches WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []Match

	for rows.Next() {
		var (
			m      Match
			detail string
		)

		if err := rows.Scan(&m.RunID, &m.FoundAt, &detail); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}

		if err := json.Unmarshal([]byte(detail), &m.Detail); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}

		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// Nop discards history when persistence is disabled.
type Nop struct{}

// RunStarted implements the recorder contract.
func (Nop) RunStarted(context.Context, Run) error { return nil }

// RunFinished implements the recorder contract.
func (Nop) RunFinished(context.Context, Run) error { return nil }

// MatchFound implements the recorder contract.
func (Nop) MatchFound(context.Context, string, notify.Notification) error { return nil }
