package service

import (
	"context"
	"testing"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/stretchr/testify/require"
)

func TestTaskCreateAppendsToLane(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &TaskService{Store: st}
	ctx := context.Background()

	owner := seedUser(t, st, "alice", domain.RoleUser)
	board := seedBoard(t, st, owner, "sprint", false)

	for i, title := range []string{"first", "second", "third"} {
		task, err := svc.Create(ctx, owner, board.ID, CreateTaskRequest{Title: title})
		require.NoError(t, err)
		require.Equal(t, int64(i), task.Position)
		require.Equal(t, domain.StatusTodo, task.Status)
	}

	// Another lane starts its own numbering from zero.
	task, err := svc.Create(ctx, owner, board.ID, CreateTaskRequest{
		Title:  "already going",
		Status: domain.StatusInProgress,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), task.Position)
}

func TestTaskCreateValidation(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &TaskService{Store: st}
	ctx := context.Background()

	owner := seedUser(t, st, "alice", domain.RoleUser)
	board := seedBoard(t, st, owner, "sprint", false)

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, board.ID, CreateTaskRequest{Title: "   "})
		require.ErrorIs(t, err, ErrTaskInvalid)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, board.ID, CreateTaskRequest{Title: "x", Status: "blocked"})
		require.ErrorIs(t, err, ErrTaskInvalid)
	})

	t.Run("unknown board is NotFound", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, "nope", CreateTaskRequest{Title: "x"})
		require.ErrorIs(t, err, ErrBoardNotFound)
	})

	t.Run("assignee must exist and be active", func(t *testing.T) {
		ghost := "no-such-user"
		_, err := svc.Create(ctx, owner, board.ID, CreateTaskRequest{Title: "x", AssigneeID: &ghost})
		require.ErrorIs(t, err, ErrAssigneeInvalid)

		disabled := seedUser(t, st, "disabled", domain.RoleUser)
		disabled.IsActive = false
		require.NoError(t, st.Users().UpdateUser(ctx, disabled))

		_, err = svc.Create(ctx, owner, board.ID, CreateTaskRequest{Title: "x", AssigneeID: &disabled.ID})
		require.ErrorIs(t, err, ErrAssigneeInvalid)
	})
}

func TestTaskMoveAcrossLanes(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &TaskService{Store: st}
	ctx := context.Background()

	owner := seedUser(t, st, "alice", domain.RoleUser)
	board := seedBoard(t, st, owner, "sprint", false)

	a := seedTask(t, st, board, "a", domain.StatusTodo, 0)
	seedTask(t, st, board, "b", domain.StatusTodo, 1)
	seedTask(t, st, board, "x", domain.StatusInProgress, 0)

	// No explicit position: land at the end of the destination lane.
	moved, err := svc.Move(ctx, owner, a.ID, domain.StatusInProgress, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInProgress, moved.Status)
	require.Equal(t, int64(1), moved.Position)

	// The vacated lane keeps its gap; nobody renumbers.
	todo, err := st.Tasks().ListTasksByLane(ctx, board.ID, domain.StatusTodo)
	require.NoError(t, err)
	require.Len(t, todo, 1)
	require.Equal(t, int64(1), todo[0].Position)
}

func TestTaskMoveExplicitPosition(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &TaskService{Store: st}
	ctx := context.Background()

	owner := seedUser(t, st, "alice", domain.RoleUser)
	board := seedBoard(t, st, owner, "sprint", false)

	a := seedTask(t, st, board, "a", domain.StatusTodo, 0)
	b := seedTask(t, st, board, "b", domain.StatusTodo, 1)

	// Last writer wins: a takes position 1 without shifting b.
	pos := int64(1)
	moved, err := svc.Move(ctx, owner, a.ID, domain.StatusTodo, &pos)
	require.NoError(t, err)
	require.Equal(t, int64(1), moved.Position)

	// Duplicate positions are tolerated; listing falls back to id order.
	lane, err := st.Tasks().ListTasksByLane(ctx, board.ID, domain.StatusTodo)
	require.NoError(t, err)
	require.Len(t, lane, 2)
	require.Equal(t, a.ID, lane[0].ID)
	require.Equal(t, b.ID, lane[1].ID)

	t.Run("negative position rejected", func(t *testing.T) {
		neg := int64(-1)
		_, err := svc.Move(ctx, owner, a.ID, domain.StatusTodo, &neg)
		require.ErrorIs(t, err, ErrTaskInvalid)
	})

	t.Run("same lane without position keeps position", func(t *testing.T) {
		moved, err := svc.Move(ctx, owner, b.ID, domain.StatusTodo, nil)
		require.NoError(t, err)
		require.Equal(t, b.Position, moved.Position)
	})
}

func TestTaskAccessEnforcement(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &TaskService{Store: st}
	ctx := context.Background()

	owner := seedUser(t, st, "alice", domain.RoleUser)
	stranger := seedUser(t, st, "mallory", domain.RoleUser)
	admin := seedUser(t, st, "root", domain.RoleAdmin)

	private := seedBoard(t, st, owner, "private", false)
	public := seedBoard(t, st, owner, "public", true)

	secret := seedTask(t, st, private, "secret", domain.StatusTodo, 0)
	visible := seedTask(t, st, public, "visible", domain.StatusTodo, 0)

	t.Run("stranger cannot read private tasks", func(t *testing.T) {
		_, err := svc.Get(ctx, stranger, secret.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("stranger reads but cannot write public tasks", func(t *testing.T) {
		_, err := svc.Get(ctx, stranger, visible.ID)
		require.NoError(t, err)

		_, err = svc.Move(ctx, stranger, visible.ID, domain.StatusDone, nil)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin writes anywhere", func(t *testing.T) {
		_, err := svc.Move(ctx, admin, secret.ID, domain.StatusDone, nil)
		require.NoError(t, err)
	})
}

func TestTaskListFilters(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := &TaskService{Store: st}
	ctx := context.Background()

	owner := seedUser(t, st, "alice", domain.RoleUser)
	worker := seedUser(t, st, "bob", domain.RoleUser)
	board := seedBoard(t, st, owner, "sprint", false)

	t1 := seedTask(t, st, board, "t1", domain.StatusTodo, 0)
	seedTask(t, st, board, "t2", domain.StatusDone, 0)

	_, err := svc.Assign(ctx, owner, t1.ID, &worker.ID)
	require.NoError(t, err)

	byStatus, err := svc.ListByBoard(ctx, owner, board.ID, TaskFilter{Status: domain.StatusTodo})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	require.Equal(t, t1.ID, byStatus[0].ID)

	byAssignee, err := svc.ListByBoard(ctx, owner, board.ID, TaskFilter{Assignee: worker.ID})
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)
	require.Equal(t, t1.ID, byAssignee[0].ID)

	_, err = svc.ListByBoard(ctx, owner, board.ID, TaskFilter{Status: "bogus"})
	require.ErrorIs(t, err, ErrTaskInvalid)
}
