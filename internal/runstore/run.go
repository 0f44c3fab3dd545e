package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const runColumns = "id, project_path, mode, state, fail_reason, created_at, updated_at"

// CreateRun inserts a new run in the Init state.
func (s *Store) CreateRun(ctx context.Context, projectPath, mode string) (*Run, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (project_path, mode, state, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		projectPath,
		nullableString(mode),
		StateInit,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRun(ctx, id)
}

// GetRun fetches a run by identifier.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if scanErrNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// LatestRunForProject returns the most recently created run for a project path, if any.
func (s *Store) LatestRunForProject(ctx context.Context, projectPath string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE project_path = ? ORDER BY id DESC LIMIT 1`,
		projectPath,
	)
	run, err := scanRun(row)
	if scanErrNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run for project: %w", err)
	}
	return run, nil
}

// SetState transitions a run to a new Failure State Machine state.
func (s *Store) SetState(ctx context.Context, id int64, state RunState) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE runs SET state = ?, updated_at = ? WHERE id = ?`,
		state,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set run state: %w", err)
	}
	return nil
}

// SetFailed transitions a run to Failed with a recorded reason.
func (s *Store) SetFailed(ctx context.Context, id int64, reason string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE runs SET state = ?, fail_reason = ?, updated_at = ? WHERE id = ?`,
		StateFailed,
		nullableString(reason),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("set run failed: %w", err)
	}
	return nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          int64
		projectPath string
		mode        sql.NullString
		state       string
		failReason  sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &projectPath, &mode, &state, &failReason, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	run := &Run{
		ID:          id,
		ProjectPath: projectPath,
		Mode:        mode.String,
		State:       RunState(state),
		FailReason:  failReason.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		run.UpdatedAt = updated
	}
	return run, nil
}
