package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
)

type timeEntriesRepo struct {
	db dbtx
}

const timeEntryColumns = `id, task_id, user_id, started_at, stopped_at, duration_seconds, note`

func scanTimeEntry(row interface{ Scan(...any) error }) (domain.TimeEntry, error) {
	var (
		e        domain.TimeEntry
		stopped  sql.NullTime
		duration sql.NullInt64
	)
	err := row.Scan(
		&e.ID,
		&e.TaskID,
		&e.UserID,
		&e.StartedAt,
		&stopped,
		&duration,
		&e.Note,
	)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	e.StoppedAt = mapNullTimePtr(stopped)
	e.DurationSeconds = mapNullInt64Ptr(duration)
	return e, nil
}

func (r *timeEntriesRepo) GetTimeEntryByID(ctx context.Context, id string) (domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?`, id)
	e, err := scanTimeEntry(row)
	return e, mapNotFound(err)
}

func (r *timeEntriesRepo) GetRunningByUser(ctx context.Context, userID string) (domain.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+timeEntryColumns+` FROM time_entries WHERE user_id = ? AND stopped_at IS NULL`,
		userID)
	e, err := scanTimeEntry(row)
	return e, mapNotFound(err)
}

func (r *timeEntriesRepo) CreateTimeEntry(ctx context.Context, e domain.TimeEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO time_entries (id, task_id, user_id, started_at, stopped_at, duration_seconds, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TaskID, e.UserID, e.StartedAt,
		mapOptionalTime(e.StoppedAt), mapOptionalInt64(e.DurationSeconds), e.Note,
	)
	return mapConstraint(err)
}

func (r *timeEntriesRepo) StopTimeEntry(ctx context.Context, id string, stoppedAt time.Time, durationSeconds int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE time_entries
		SET stopped_at = ?, duration_seconds = ?
		WHERE id = ? AND stopped_at IS NULL`,
		stoppedAt, durationSeconds, id,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *timeEntriesRepo) ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.TimeEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+timeEntryColumns+` FROM time_entries
		WHERE user_id = ? AND started_at >= ? AND started_at < ?
		ORDER BY started_at, id`,
		userID, start, end)
}

func (r *timeEntriesRepo) ListByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	return r.queryEntries(ctx,
		`SELECT `+timeEntryColumns+` FROM time_entries WHERE task_id = ? ORDER BY started_at, id`,
		taskID)
}

func (r *timeEntriesRepo) queryEntries(ctx context.Context, query string, args ...any) ([]domain.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
