package sqlite

import (
	"context"
	"database/sql"

	"github.com/tracklane/tracklane/internal/tracker/domain"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, board_id, title, description, status, priority, position, assignee_id, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var (
		t        domain.Task
		assignee sql.NullString
		due      sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.BoardID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Position,
		&assignee,
		&due,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	t.AssigneeID = mapNullStringPtr(assignee)
	t.DueDate = mapNullTimePtr(due)
	return t, nil
}

func (r *tasksRepo) GetTaskByID(ctx context.Context, id string) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	return t, mapNotFound(err)
}

func (r *tasksRepo) ListTasksByBoard(ctx context.Context, boardID string) ([]domain.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE board_id = ? ORDER BY position, id`,
		boardID)
}

func (r *tasksRepo) ListTasksByLane(ctx context.Context, boardID string, status domain.Status) ([]domain.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE board_id = ? AND status = ? ORDER BY position, id`,
		boardID, status)
}

func (r *tasksRepo) ListTasksByAssignee(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE assignee_id = ? ORDER BY id`,
		userID)
}

func (r *tasksRepo) ListAllTasks(ctx context.Context) ([]domain.Task, error) {
	return r.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

func (r *tasksRepo) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *tasksRepo) CountTasksByBoard(ctx context.Context, boardID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE board_id = ?`, boardID).Scan(&n)
	return n, err
}

func (r *tasksRepo) CountLane(ctx context.Context, boardID string, status domain.Status) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE board_id = ? AND status = ?`, boardID, status).Scan(&n)
	return n, err
}

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, board_id, title, description, status, priority, position, assignee_id, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.BoardID, t.Title, t.Description, t.Status, t.Priority,
		t.Position, mapOptionalString(t.AssigneeID), mapOptionalTime(t.DueDate),
	)
	return mapConstraint(err)
}

func (r *tasksRepo) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, priority = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		t.Title, t.Description, t.Priority, mapOptionalTime(t.DueDate), t.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tasksRepo) SetTaskPlacement(ctx context.Context, taskID string, status domain.Status, position int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?, position = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		status, position, taskID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tasksRepo) SetTaskAssignee(ctx context.Context, taskID string, assigneeID *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET assignee_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		mapOptionalString(assigneeID), taskID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tasksRepo) DeleteTask(ctx context.Context, taskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
