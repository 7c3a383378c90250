package generate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store persists generation runs and their accepted instances in the
// sqlite catalog.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened catalog database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	RunID        string
	CreatedAt    string
	Kind         string
	SpecJSON     string
	Solver       string
	OutDir       string
	Target       int
	MaxAttempts  int
	Seed         int64
	Attempts     int
	TrivialCount int
	ErrorSkips   int
	Collected    int
	Status       string
}

// CreateRun inserts the run record.
func (s *Store) CreateRun(ctx context.Context, rec RunRecord) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO runs(run_id, created_at, kind, spec_json, solver, out_dir, target, max_attempts, seed, status)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, createdAt, rec.Kind, rec.SpecJSON, rec.Solver, rec.OutDir, rec.Target, rec.MaxAttempts, rec.Seed, rec.Status); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// AddInstance records one accepted instance.
func (s *Store) AddInstance(ctx context.Context, runID string, idx int, path string, relaxObj, restrictedObj, gap float64) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO instances(run_id, idx, path, relax_obj, restricted_obj, gap, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		runID, idx, path, relaxObj, restrictedObj, gap, createdAt); err != nil {
		return fmt.Errorf("insert instance: %w", err)
	}
	return nil
}

// FinishRun stores the final counters and status for a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string, attempts, trivialCount, errorSkips, collected int) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE runs SET attempts=?, trivial_count=?, error_skips=?, collected=?, status=? WHERE run_id=?`,
		attempts, trivialCount, errorSkips, collected, status, runID); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, created_at, kind, spec_json, solver, out_dir, target, max_attempts, seed, attempts, trivial_count, error_skips, collected, status
		FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.CreatedAt, &rec.Kind, &rec.SpecJSON, &rec.Solver, &rec.OutDir, &rec.Target,
			&rec.MaxAttempts, &rec.Seed, &rec.Attempts, &rec.TrivialCount, &rec.ErrorSkips, &rec.Collected, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// InstancePaths returns the persisted locations of a run's instances.
func (s *Store) InstancePaths(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM instances WHERE run_id=? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		out = append(out, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return out, nil
}

// DeleteRun removes the run row; instance rows cascade.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id=?`, runID); err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	return nil
}
