package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const cueColumns = "run_id, cue_index, status, cache_path, error, updated_at"

// UpsertCueState records or updates a cue's synthesis status within a run.
func (s *Store) UpsertCueState(ctx context.Context, runID int64, cueIndex int, status CueStatus, cachePath, cueErr string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO cue_states (run_id, cue_index, status, cache_path, error, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id, cue_index) DO UPDATE SET
             status = excluded.status,
             cache_path = excluded.cache_path,
             error = excluded.error,
             updated_at = excluded.updated_at`,
		runID,
		cueIndex,
		status,
		nullableString(cachePath),
		nullableString(cueErr),
		now,
	); err != nil {
		return fmt.Errorf("upsert cue state: %w", err)
	}
	return nil
}

// CueStates returns every recorded cue state for a run, ordered by cue index.
func (s *Store) CueStates(ctx context.Context, runID int64) ([]*CueRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+cueColumns+` FROM cue_states WHERE run_id = ? ORDER BY cue_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query cue states: %w", err)
	}
	defer rows.Close()

	var records []*CueRecord
	for rows.Next() {
		record, err := scanCueRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// PendingCueIndexes returns cue indexes that are not yet synthesized or cached.
func (s *Store) PendingCueIndexes(ctx context.Context, runID int64) ([]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT cue_index FROM cue_states WHERE run_id = ? AND status NOT IN (?, ?) ORDER BY cue_index`,
		runID,
		CueCached,
		CueSynthesized,
	)
	if err != nil {
		return nil, fmt.Errorf("query pending cues: %w", err)
	}
	defer rows.Close()

	var indexes []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

func scanCueRecord(scanner interface{ Scan(dest ...any) error }) (*CueRecord, error) {
	var (
		runID      int64
		cueIndex   int
		status     string
		cachePath  sql.NullString
		cueErr     sql.NullString
		updatedRaw string
	)
	if err := scanner.Scan(&runID, &cueIndex, &status, &cachePath, &cueErr, &updatedRaw); err != nil {
		return nil, err
	}
	record := &CueRecord{
		RunID:     runID,
		CueIndex:  cueIndex,
		Status:    CueStatus(status),
		CachePath: cachePath.String,
		Error:     cueErr.String,
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}
