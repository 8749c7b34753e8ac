package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, unprocessed_dir, processed_dir, error_dir, started_at, finished_at, succeeded, failed, error_message"

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, runID string, dirs Dirs, startedAt time.Time) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("run id is required")
	}
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (id, unprocessed_dir, processed_dir, error_dir, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID,
		dirs.Unprocessed,
		dirs.Processed,
		dirs.Error,
		formatTime(startedAt),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the run totals. A non-nil runErr is kept as the run's
// error message.
func (s *Store) FinishRun(ctx context.Context, runID string, succeeded, failed int, runErr error, finishedAt time.Time) error {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs SET finished_at = ?, succeeded = ?, failed = ?, error_message = ? WHERE id = ?`,
		formatTime(finishedAt),
		succeeded,
		failed,
		nullableString(message),
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %q: run not found", runID)
	}
	return nil
}

// GetRun fetches a run by id. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+runColumns+" FROM runs WHERE id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// PruneBefore deletes runs started before cutoff along with their
// dispositions and returns the number of runs removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		stamp := formatTime(cutoff)
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM dispositions WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, stamp); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, stamp)
		if err != nil {
			return err
		}
		if removed, err = res.RowsAffected(); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return removed, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		startedRaw   string
		finishedRaw  sql.NullString
		errorMessage sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Dirs.Unprocessed,
		&run.Dirs.Processed,
		&run.Dirs.Error,
		&startedRaw,
		&finishedRaw,
		&run.Succeeded,
		&run.Failed,
		&errorMessage,
	); err != nil {
		return nil, err
	}

	started, err := parseTimeString(startedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = started
	if finishedRaw.Valid {
		finished, err := parseTimeString(finishedRaw.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &finished
	}
	run.ErrorMessage = errorMessage.String
	return &run, nil
}
