package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/pkg/idx"
	"github.com/tracklane/tracklane/pkg/slogx"
)

var (
	ErrTaskNotFound    = errors.New("task_not_found")
	ErrTaskInvalid     = errors.New("task_invalid")
	ErrAssigneeInvalid = errors.New("assignee_invalid")
)

type TaskService struct {
	Store store.Store
}

// TaskFilter narrows a board listing. Zero values mean no filtering.
type TaskFilter struct {
	Status   domain.Status
	Assignee string
}

// ListByBoard returns a board's tasks, optionally filtered by lane and
// assignee, sorted by (position, id).
func (s *TaskService) ListByBoard(ctx context.Context, subject domain.User, boardID string, filter TaskFilter) ([]domain.Task, error) {
	board, err := s.readableBoard(ctx, subject, boardID)
	if err != nil {
		return nil, err
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrTaskInvalid
	}

	var tasks []domain.Task
	if filter.Status != "" {
		tasks, err = s.Store.Tasks().ListTasksByLane(ctx, board.ID, filter.Status)
	} else {
		tasks, err = s.Store.Tasks().ListTasksByBoard(ctx, board.ID)
	}
	if err != nil {
		return nil, err
	}

	if filter.Assignee == "" {
		return tasks, nil
	}

	filtered := tasks[:0]
	for _, t := range tasks {
		if t.AssigneeID != nil && *t.AssigneeID == filter.Assignee {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// CreateTaskRequest carries the inputs for a new task. Status and
// Priority default to todo/medium when empty.
type CreateTaskRequest struct {
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	AssigneeID  *string
	DueDate     *time.Time
}

// Create appends a task to the end of its lane: the new position is the
// lane's current size, so lanes fill 0..n-1 in creation order.
func (s *TaskService) Create(ctx context.Context, subject domain.User, boardID string, req CreateTaskRequest) (domain.Task, error) {
	board, err := s.writableBoard(ctx, subject, boardID)
	if err != nil {
		return domain.Task{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Task{}, ErrTaskInvalid
	}

	status := req.Status
	if status == "" {
		status = domain.StatusTodo
	}
	if !status.Valid() {
		return domain.Task{}, ErrTaskInvalid
	}

	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return domain.Task{}, ErrTaskInvalid
	}

	if req.AssigneeID != nil {
		if err := s.validAssignee(ctx, *req.AssigneeID); err != nil {
			return domain.Task{}, err
		}
	}

	position, err := s.Store.Tasks().CountLane(ctx, board.ID, status)
	if err != nil {
		return domain.Task{}, err
	}

	task := domain.Task{
		ID:          idx.New().String(),
		BoardID:     board.ID,
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		Position:    position,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}

	if err := s.Store.Tasks().CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}

	slogx.FromContext(ctx).Info("task created",
		slog.String("task_id", task.ID),
		slog.String("board_id", board.ID),
		slog.String("status", string(status)),
		slog.Int64("position", position),
	)

	return s.Store.Tasks().GetTaskByID(ctx, task.ID)
}

// Get returns a task if subject may read its board.
func (s *TaskService) Get(ctx context.Context, subject domain.User, taskID string) (domain.Task, error) {
	task, err := s.Store.Tasks().GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}

	if _, err := s.readableBoard(ctx, subject, task.BoardID); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// TaskUpdate carries the mutable task fields; nil leaves a field as is.
// Status and position changes go through Move instead.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	DueDate     *time.Time
	ClearDue    bool
}

// Update edits a task's descriptive fields.
func (s *TaskService) Update(ctx context.Context, subject domain.User, taskID string, upd TaskUpdate) (domain.Task, error) {
	task, err := s.writableTask(ctx, subject, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return domain.Task{}, ErrTaskInvalid
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		if !upd.Priority.Valid() {
			return domain.Task{}, ErrTaskInvalid
		}
		task.Priority = *upd.Priority
	}
	if upd.ClearDue {
		task.DueDate = nil
	} else if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}

	if err := s.Store.Tasks().UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}

	return s.Store.Tasks().GetTaskByID(ctx, taskID)
}

// Move places a task in a lane, last writer wins.
//
// When position is nil and the lane changes, the task lands at the end
// of the destination lane (its current size). When position is given it
// is written as-is. Siblings are never renumbered: positions are
// advisory sort keys and duplicates or gaps left behind by moves are
// tolerated, ties break by id.
func (s *TaskService) Move(ctx context.Context, subject domain.User, taskID string, status domain.Status, position *int64) (domain.Task, error) {
	task, err := s.writableTask(ctx, subject, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	if !status.Valid() {
		return domain.Task{}, ErrTaskInvalid
	}
	if position != nil && *position < 0 {
		return domain.Task{}, ErrTaskInvalid
	}

	newPos := task.Position
	switch {
	case position != nil:
		newPos = *position
	case status != task.Status:
		newPos, err = s.Store.Tasks().CountLane(ctx, task.BoardID, status)
		if err != nil {
			return domain.Task{}, err
		}
	}

	if err := s.Store.Tasks().SetTaskPlacement(ctx, taskID, status, newPos); err != nil {
		return domain.Task{}, err
	}

	slogx.FromContext(ctx).Info("task moved",
		slog.String("task_id", taskID),
		slog.String("status", string(status)),
		slog.Int64("position", newPos),
	)

	return s.Store.Tasks().GetTaskByID(ctx, taskID)
}

// Assign sets or clears (nil) the task's assignee. Assignees must be
// existing, active users.
func (s *TaskService) Assign(ctx context.Context, subject domain.User, taskID string, assigneeID *string) (domain.Task, error) {
	task, err := s.writableTask(ctx, subject, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	if assigneeID != nil {
		if err := s.validAssignee(ctx, *assigneeID); err != nil {
			return domain.Task{}, err
		}
	}

	if err := s.Store.Tasks().SetTaskAssignee(ctx, task.ID, assigneeID); err != nil {
		return domain.Task{}, err
	}

	return s.Store.Tasks().GetTaskByID(ctx, taskID)
}

// Delete removes a task and, through the schema, its time entries.
func (s *TaskService) Delete(ctx context.Context, subject domain.User, taskID string) error {
	task, err := s.writableTask(ctx, subject, taskID)
	if err != nil {
		return err
	}
	return s.Store.Tasks().DeleteTask(ctx, task.ID)
}

// ListAssigned returns the tasks assigned to subject. Admins get the
// full task list instead, for dashboard views.
func (s *TaskService) ListAssigned(ctx context.Context, subject domain.User) ([]domain.Task, error) {
	if subject.IsAdmin() {
		return s.Store.Tasks().ListAllTasks(ctx)
	}
	return s.Store.Tasks().ListTasksByAssignee(ctx, subject.ID)
}

func (s *TaskService) validAssignee(ctx context.Context, userID string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAssigneeInvalid
		}
		return err
	}
	if !user.IsActive {
		return ErrAssigneeInvalid
	}
	return nil
}

func (s *TaskService) readableBoard(ctx context.Context, subject domain.User, boardID string) (domain.Board, error) {
	return s.boardWithAccess(ctx, subject, boardID, ActionRead)
}

func (s *TaskService) writableBoard(ctx context.Context, subject domain.User, boardID string) (domain.Board, error) {
	return s.boardWithAccess(ctx, subject, boardID, ActionWrite)
}

func (s *TaskService) writableTask(ctx context.Context, subject domain.User, taskID string) (domain.Task, error) {
	task, err := s.Store.Tasks().GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	if _, err := s.writableBoard(ctx, subject, task.BoardID); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) boardWithAccess(ctx context.Context, subject domain.User, boardID string, action Action) (domain.Board, error) {
	board, err := s.Store.Boards().GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Board{}, ErrBoardNotFound
		}
		return domain.Board{}, err
	}
	if !CanAccessBoard(subject, board, action) {
		return domain.Board{}, ErrForbidden
	}
	return board, nil
}
