package storage

import (
	"context"
	"time"
)

// AddInterests inserts interests into the selection. Interests already
// selected keep their original selection time.
func (s *SQLiteStorage) AddInterests(ctx context.Context, interests []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT OR IGNORE INTO interests (interest, selected_at)
        VALUES (?, CURRENT_TIMESTAMP)`
	for _, interest := range interests {
		if _, err := tx.ExecContext(ctx, query, interest); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetInterests returns the selection in lexicographic order
func (s *SQLiteStorage) GetInterests(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT interest FROM interests ORDER BY interest`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interests []string
	for rows.Next() {
		var interest string
		if err := rows.Scan(&interest); err != nil {
			return nil, err
		}
		interests = append(interests, interest)
	}
	return interests, rows.Err()
}

// ClearInterests drops the whole selection
func (s *SQLiteStorage) ClearInterests(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM interests`)
	return err
}

// SaveRun records a reconciliation pass together with its failures and
// sets run.ID
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runQuery := `
        INSERT INTO reconcile_runs
        (backend, started_at, duration_ms, desired, deleted, created)
        VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, runQuery,
		run.Backend,
		run.StartedAt.UnixMilli(),
		run.Duration.Milliseconds(),
		run.Desired,
		run.Deleted,
		run.Created)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	failureQuery := `
        INSERT INTO reconcile_failures (run_id, operation, target, kind, message)
        VALUES (?, ?, ?, ?, ?)`
	for _, f := range run.Failures {
		if _, err := tx.ExecContext(ctx, failureQuery, id, f.Operation, f.Target, f.Kind, f.Message); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	run.ID = id
	return nil
}

// GetRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	query := `SELECT id, backend, started_at, duration_ms, desired, deleted, created
              FROM reconcile_runs
              ORDER BY id DESC
              LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var startedAt, durationMS int64
		if err := rows.Scan(&r.ID, &r.Backend, &startedAt, &durationMS, &r.Desired, &r.Deleted, &r.Created); err != nil {
			rows.Close()
			return nil, err
		}
		r.StartedAt = time.UnixMilli(startedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the only connection before querying failures
	rows.Close()

	for _, r := range runs {
		failures, err := s.getRunFailures(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		r.Failures = failures
	}
	return runs, nil
}

func (s *SQLiteStorage) getRunFailures(ctx context.Context, runID int64) ([]RunFailure, error) {
	query := `SELECT operation, target, kind, message
              FROM reconcile_failures
              WHERE run_id = ?
              ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []RunFailure
	for rows.Next() {
		var f RunFailure
		if err := rows.Scan(&f.Operation, &f.Target, &f.Kind, &f.Message); err != nil {
			return nil, err
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
