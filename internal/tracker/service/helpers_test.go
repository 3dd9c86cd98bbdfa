package service

import (
	"context"
	"testing"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/internal/tracker/store/drivers/sqlite"
	"github.com/tracklane/tracklane/pkg/clockx"
	"github.com/tracklane/tracklane/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestClock() *clockx.Fixed {
	return clockx.NewFixed(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
}

func seedUser(t *testing.T, st store.Store, username, role string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "unused",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))

	u, err := st.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	return u
}

func seedBoard(t *testing.T, st store.Store, owner domain.User, name string, public bool) domain.Board {
	t.Helper()

	b := domain.Board{
		ID:       idx.New().String(),
		Name:     name,
		IsPublic: public,
		OwnerID:  owner.ID,
	}
	require.NoError(t, st.Boards().CreateBoard(context.Background(), b))

	b, err := st.Boards().GetBoardByID(context.Background(), b.ID)
	require.NoError(t, err)
	return b
}

func seedTask(t *testing.T, st store.Store, board domain.Board, title string, status domain.Status, position int64) domain.Task {
	t.Helper()

	task := domain.Task{
		ID:       idx.New().String(),
		BoardID:  board.ID,
		Title:    title,
		Status:   status,
		Priority: domain.PriorityMedium,
		Position: position,
	}
	require.NoError(t, st.Tasks().CreateTask(context.Background(), task))

	task, err := st.Tasks().GetTaskByID(context.Background(), task.ID)
	require.NoError(t, err)
	return task
}
