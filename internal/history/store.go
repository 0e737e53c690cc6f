// Package history keeps suite runs and their test results in sqlite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned by Get for unknown ids
var ErrRunNotFound = errors.New("run not found")

// Run states
const (
	StatusRunning  = "running"
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// Run is one suite execution
type Run struct {
	ID         string       `db:"id" json:"id"`
	Suite      string       `db:"suite" json:"suite"`
	Status     string       `db:"status" json:"status"`
	Passed     int          `db:"passed" json:"passed"`
	Failed     int          `db:"failed" json:"failed"`
	Skipped    int          `db:"skipped" json:"skipped"`
	ReportPath string       `db:"report_path" json:"report_path"`
	StartedAt  time.Time    `db:"started_at" json:"started_at"`
	FinishedAt sql.NullTime `db:"finished_at" json:"-"`
}

// Duration is zero while the run is in progress
func (r Run) Duration() time.Duration {
	if !r.FinishedAt.Valid {
		return 0
	}
	return r.FinishedAt.Time.Sub(r.StartedAt)
}

// TestResult is one test (or data row) of a run
type TestResult struct {
	ID         int64     `db:"id" json:"id"`
	RunID      string    `db:"run_id" json:"run_id"`
	Name       string    `db:"name" json:"name"`
	Outcome    string    `db:"outcome" json:"outcome"`
	Message    string    `db:"message" json:"message"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	Screenshot string    `db:"screenshot" json:"screenshot,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		suite TEXT NOT NULL,
		status TEXT NOT NULL,
		passed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		report_path TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NULL
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		screenshot TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_results_run ON test_results(run_id)`,
}

// Store wraps the history database
type Store struct {
	db *sqlx.DB
}

// Open opens (creating when needed) the sqlite file at path and migrates it
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// sqlite serialises writers anyway
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate history: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// RecordRun inserts a run in the running state
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO runs (id, suite, status, passed, failed, skipped, report_path, started_at, finished_at)
		VALUES (:id, :suite, :status, :passed, :failed, :skipped, :report_path, :started_at, :finished_at)`, run)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// RecordTest appends a test result to a run
func (s *Store) RecordTest(ctx context.Context, res *TestResult) error {
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO test_results (run_id, name, outcome, message, duration_ms, screenshot, created_at)
		VALUES (:run_id, :name, :outcome, :message, :duration_ms, :screenshot, :created_at)`, res)
	if err != nil {
		return fmt.Errorf("record test %s: %w", res.Name, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		res.ID = id
	}
	return nil
}

// FinishRun stores the final counts. The status is derived from them unless
// the run was canceled.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	if run.Status == "" || run.Status == StatusRunning {
		run.Status = StatusPassed
		if run.Failed > 0 {
			run.Status = StatusFailed
		}
	}
	if !run.FinishedAt.Valid {
		run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE runs SET status = :status, passed = :passed, failed = :failed,
			skipped = :skipped, report_path = :report_path, finished_at = :finished_at
		WHERE id = :id`, run)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrRunNotFound)
	}
	return nil
}

// Recent returns the newest runs first, optionally for one suite
func (s *Store) Recent(ctx context.Context, suite string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := []Run{}
	var err error
	if suite == "" {
		err = s.db.SelectContext(ctx, &runs,
			`SELECT * FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	} else {
		err = s.db.SelectContext(ctx, &runs,
			`SELECT * FROM runs WHERE suite = ? ORDER BY started_at DESC LIMIT ?`, suite, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.GetContext(ctx, &run, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// Tests returns a run's results in insertion order
func (s *Store) Tests(ctx context.Context, runID string) ([]TestResult, error) {
	results := []TestResult{}
	err := s.db.SelectContext(ctx, &results,
		`SELECT * FROM test_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list tests of %s: %w", runID, err)
	}
	return results, nil
}
