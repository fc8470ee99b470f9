// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists notebook run results in a SQLite database so
// that earlier runs can be listed and exported.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nbcheck/pkg/types"
)

const (
	dbFile            = "nbcheck.db"
	defaultMaxResults = 20
)

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates stateDir/nbcheck.db and its schema.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_path ON results(path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and its results in one transaction and returns the
// new run ID.
func (s *Store) Record(ctx context.Context, run types.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (root, started_at) VALUES (?, ?)`,
		run.Root, run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for _, r := range run.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, path, exit_code, status, error, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, r.Path, r.ExitCode, string(r.Status), r.Error, r.Duration.Milliseconds(),
		); err != nil {
			return 0, fmt.Errorf("inserting result for %s: %w", r.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Recent returns up to limit runs, newest first, each with its results in
// execution order. A limit of zero or less uses the default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = defaultMaxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root, started_at FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var (
			run     types.Run
			started string
		)
		if err := rows.Scan(&run.ID, &run.Root, &started); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parsing start time of run %d: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		results, err := s.results(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

func (s *Store) results(ctx context.Context, runID int64) ([]types.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, exit_code, status, COALESCE(error, ''), duration_ms
		 FROM results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results of run %d: %w", runID, err)
	}
	defer rows.Close()

	var results []types.Result
	for rows.Next() {
		var (
			r      types.Result
			status string
			ms     int64
		)
		if err := rows.Scan(&r.Path, &r.ExitCode, &status, &r.Error, &ms); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Status = types.Status(status)
		r.Duration = time.Duration(ms) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}

const exportLimit = 100000

// ExportYAML writes every recorded run to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	runs, err := s.Recent(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every recorded run to path as JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	runs, err := s.Recent(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
