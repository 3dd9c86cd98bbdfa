package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/pkg/idx"
	"github.com/tracklane/tracklane/pkg/slogx"
)

var (
	ErrBoardNotFound = errors.New("board_not_found")
	ErrBoardInvalid  = errors.New("board_invalid")
)

type BoardService struct {
	Store store.Store
}

// BoardSummary is a board plus the listing metadata the UI shows.
type BoardSummary struct {
	Board      domain.Board
	OwnerName  string
	TasksCount int64
}

// BoardDetail is a board with its tasks sorted by (position, id).
type BoardDetail struct {
	Board domain.Board
	Tasks []domain.Task
}

// List returns the boards subject may see: everything for admins,
// owned plus public boards for everyone else.
func (s *BoardService) List(ctx context.Context, subject domain.User) ([]BoardSummary, error) {
	var (
		boards []domain.Board
		err    error
	)
	if subject.IsAdmin() {
		boards, err = s.Store.Boards().ListBoards(ctx)
	} else {
		boards, err = s.Store.Boards().ListAccessibleBoards(ctx, subject.ID)
	}
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, boards)
}

// ListPublic returns the public boards only. Serves unauthenticated
// discovery.
func (s *BoardService) ListPublic(ctx context.Context) ([]BoardSummary, error) {
	boards, err := s.Store.Boards().ListPublicBoards(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, boards)
}

func (s *BoardService) summarize(ctx context.Context, boards []domain.Board) ([]BoardSummary, error) {
	summaries := make([]BoardSummary, 0, len(boards))
	owners := make(map[string]string) // owner id -> display name

	for _, b := range boards {
		name, ok := owners[b.OwnerID]
		if !ok {
			owner, err := s.Store.Users().GetUserByID(ctx, b.OwnerID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			name = owner.DisplayName()
			owners[b.OwnerID] = name
		}

		count, err := s.Store.Tasks().CountTasksByBoard(ctx, b.ID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, BoardSummary{
			Board:      b,
			OwnerName:  name,
			TasksCount: count,
		})
	}
	return summaries, nil
}

// Create makes subject the owner of a new board.
func (s *BoardService) Create(ctx context.Context, subject domain.User, name, description string, isPublic bool) (domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Board{}, ErrBoardInvalid
	}

	board := domain.Board{
		ID:          idx.New().String(),
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
		OwnerID:     subject.ID,
	}

	if err := s.Store.Boards().CreateBoard(ctx, board); err != nil {
		return domain.Board{}, err
	}

	slogx.FromContext(ctx).Info("board created",
		slog.String("board_id", board.ID),
		slog.String("owner_id", subject.ID),
	)

	return s.Store.Boards().GetBoardByID(ctx, board.ID)
}

// Get returns the board with its tasks if subject may read it.
// Missing boards and access denials are kept distinct so the API can
// answer 404 vs 403 honestly.
func (s *BoardService) Get(ctx context.Context, subject domain.User, boardID string) (BoardDetail, error) {
	board, err := s.Store.Boards().GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return BoardDetail{}, ErrBoardNotFound
		}
		return BoardDetail{}, err
	}

	if !CanAccessBoard(subject, board, ActionRead) {
		return BoardDetail{}, ErrForbidden
	}

	tasks, err := s.Store.Tasks().ListTasksByBoard(ctx, boardID)
	if err != nil {
		return BoardDetail{}, err
	}

	return BoardDetail{Board: board, Tasks: tasks}, nil
}

// BoardUpdate carries the mutable board fields; nil leaves a field as is.
type BoardUpdate struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// Update applies changes to a board subject can write to.
func (s *BoardService) Update(ctx context.Context, subject domain.User, boardID string, upd BoardUpdate) (domain.Board, error) {
	board, err := s.writable(ctx, subject, boardID)
	if err != nil {
		return domain.Board{}, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return domain.Board{}, ErrBoardInvalid
		}
		board.Name = name
	}
	if upd.Description != nil {
		board.Description = *upd.Description
	}
	if upd.IsPublic != nil {
		board.IsPublic = *upd.IsPublic
	}

	if err := s.Store.Boards().UpdateBoard(ctx, board); err != nil {
		return domain.Board{}, err
	}

	return s.Store.Boards().GetBoardByID(ctx, boardID)
}

// Delete removes a board. Tasks and their time entries go with it via
// the schema cascades; the pre-delete task count is returned so the
// caller can report what was swept away. Count and delete run in one
// transaction so the count matches what the cascade actually removed.
func (s *BoardService) Delete(ctx context.Context, subject domain.User, boardID string) (int64, error) {
	board, err := s.writable(ctx, subject, boardID)
	if err != nil {
		return 0, err
	}

	var count int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err = tx.Tasks().CountTasksByBoard(ctx, board.ID)
		if err != nil {
			return err
		}
		return tx.Boards().DeleteBoard(ctx, board.ID)
	})
	if err != nil {
		return 0, err
	}

	slogx.FromContext(ctx).Info("board deleted",
		slog.String("board_id", board.ID),
		slog.Int64("tasks_deleted", count),
	)

	return count, nil
}

func (s *BoardService) writable(ctx context.Context, subject domain.User, boardID string) (domain.Board, error) {
	board, err := s.Store.Boards().GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Board{}, ErrBoardNotFound
		}
		return domain.Board{}, err
	}
	if !CanAccessBoard(subject, board, ActionWrite) {
		return domain.Board{}, ErrForbidden
	}
	return board, nil
}
