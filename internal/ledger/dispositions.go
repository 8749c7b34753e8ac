package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"intake/internal/intake"
)

const entryColumns = "id, run_id, source_path, destination_path, status, kind, reason, table_count, row_count, moved, recorded_at"

// RecordDisposition appends one file outcome to a run.
func (s *Store) RecordDisposition(ctx context.Context, runID string, d intake.Disposition) error {
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO dispositions (
            run_id, source_path, destination_path, status, kind, reason,
            table_count, row_count, moved, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		d.Source,
		nullableString(d.Destination),
		string(d.Status),
		nullableString(d.Kind),
		nullableString(d.Reason),
		d.Tables,
		d.Rows,
		boolToInt(d.Moved),
		formatTime(d.At),
	); err != nil {
		return fmt.Errorf("insert disposition: %w", err)
	}
	return nil
}

// ListDispositions returns the entries of a run in the order they were recorded.
func (s *Store) ListDispositions(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT "+entryColumns+" FROM dispositions WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("list dispositions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan disposition: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// StatusCounts tallies dispositions across all runs by status.
func (s *Store) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT status, COUNT(1) FROM dispositions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count dispositions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry       Entry
		destination sql.NullString
		kind        sql.NullString
		reason      sql.NullString
		moved       int
		recordedRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.Source,
		&destination,
		&entry.Status,
		&kind,
		&reason,
		&entry.Tables,
		&entry.Rows,
		&moved,
		&recordedRaw,
	); err != nil {
		return Entry{}, err
	}
	recorded, err := parseTimeString(recordedRaw)
	if err != nil {
		return Entry{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	entry.Destination = destination.String
	entry.Kind = kind.String
	entry.Reason = reason.String
	entry.Moved = moved != 0
	entry.RecordedAt = recorded
	return entry, nil
}
