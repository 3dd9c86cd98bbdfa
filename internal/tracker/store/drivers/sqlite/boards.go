package sqlite

import (
	"context"

	"github.com/tracklane/tracklane/internal/tracker/domain"
)

type boardsRepo struct {
	db dbtx
}

const boardColumns = `id, name, description, is_public, owner_id, created_at, updated_at`

func scanBoard(row interface{ Scan(...any) error }) (domain.Board, error) {
	var b domain.Board
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Description,
		&b.IsPublic,
		&b.OwnerID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	return b, err
}

func (r *boardsRepo) GetBoardByID(ctx context.Context, id string) (domain.Board, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE id = ?`, id)
	b, err := scanBoard(row)
	return b, mapNotFound(err)
}

func (r *boardsRepo) ListBoards(ctx context.Context) ([]domain.Board, error) {
	return r.queryBoards(ctx,
		`SELECT `+boardColumns+` FROM boards ORDER BY id DESC`)
}

func (r *boardsRepo) ListAccessibleBoards(ctx context.Context, userID string) ([]domain.Board, error) {
	return r.queryBoards(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE owner_id = ? OR is_public = 1 ORDER BY id DESC`,
		userID)
}

func (r *boardsRepo) ListPublicBoards(ctx context.Context) ([]domain.Board, error) {
	return r.queryBoards(ctx,
		`SELECT `+boardColumns+` FROM boards WHERE is_public = 1 ORDER BY id DESC`)
}

func (r *boardsRepo) queryBoards(ctx context.Context, query string, args ...any) ([]domain.Board, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (r *boardsRepo) CreateBoard(ctx context.Context, b domain.Board) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO boards (id, name, description, is_public, owner_id)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.IsPublic, b.OwnerID,
	)
	return mapConstraint(err)
}

func (r *boardsRepo) UpdateBoard(ctx context.Context, b domain.Board) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE boards
		SET name = ?, description = ?, is_public = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		b.Name, b.Description, b.IsPublic, b.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *boardsRepo) DeleteBoard(ctx context.Context, boardID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, boardID)
	if err != nil {
		return err
	}
	return requireRow(res)
}
