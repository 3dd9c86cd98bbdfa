package store

import (
	"context"
	"errors"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and individually
// mockable, and make it explicit which repo a transaction is scoped to.
type Store interface {
	Users() Users
	Boards() Boards
	Tasks() Tasks
	TimeEntries() TimeEntries

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn
	// rolls the transaction back, nil commits it.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login and registration.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used for email uniqueness checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns users ordered by creation (id ascending).
	ListUsers(ctx context.Context, limit, offset int64) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Duplicate username or email surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser persists email, full_name, role and is_active, bumping
	// updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// DeleteUser removes the user. Owned boards cascade per schema.
	DeleteUser(ctx context.Context, userID string) error
}

type Boards interface {
	// GetBoardByID returns a board by id.
	GetBoardByID(ctx context.Context, id string) (domain.Board, error)

	// ListBoards returns every board, newest first.
	ListBoards(ctx context.Context) ([]domain.Board, error)

	// ListAccessibleBoards returns boards owned by userID plus public ones.
	ListAccessibleBoards(ctx context.Context, userID string) ([]domain.Board, error)

	// ListPublicBoards returns boards with the public flag set.
	ListPublicBoards(ctx context.Context) ([]domain.Board, error)

	// CreateBoard inserts a new board.
	CreateBoard(ctx context.Context, b domain.Board) error

	// UpdateBoard persists name, description and is_public, bumping
	// updated_at.
	UpdateBoard(ctx context.Context, b domain.Board) error

	// DeleteBoard cascades to tasks and their time entries (per schema).
	DeleteBoard(ctx context.Context, boardID string) error
}

type Tasks interface {
	// GetTaskByID returns a task by id.
	GetTaskByID(ctx context.Context, id string) (domain.Task, error)

	// ListTasksByBoard returns a board's tasks sorted by (position, id).
	ListTasksByBoard(ctx context.Context, boardID string) ([]domain.Task, error)

	// ListTasksByLane returns one (board, status) lane sorted by
	// (position, id).
	ListTasksByLane(ctx context.Context, boardID string, status domain.Status) ([]domain.Task, error)

	// ListTasksByAssignee returns tasks assigned to userID.
	ListTasksByAssignee(ctx context.Context, userID string) ([]domain.Task, error)

	// ListAllTasks returns every task (admin dashboards).
	ListAllTasks(ctx context.Context) ([]domain.Task, error)

	// CountTasksByBoard returns the number of tasks on a board.
	CountTasksByBoard(ctx context.Context, boardID string) (int64, error)

	// CountLane returns the number of tasks in one (board, status) lane.
	CountLane(ctx context.Context, boardID string, status domain.Status) (int64, error)

	// CreateTask inserts a new task with its lane position already assigned.
	CreateTask(ctx context.Context, t domain.Task) error

	// UpdateTask persists title, description, priority and due_date,
	// bumping updated_at.
	UpdateTask(ctx context.Context, t domain.Task) error

	// SetTaskPlacement overwrites a task's status and position directly.
	// No sibling renumbering happens here; see the ordering engine.
	SetTaskPlacement(ctx context.Context, taskID string, status domain.Status, position int64) error

	// SetTaskAssignee sets or clears (nil) the assignee.
	SetTaskAssignee(ctx context.Context, taskID string, assigneeID *string) error

	// DeleteTask cascades to the task's time entries (per schema).
	DeleteTask(ctx context.Context, taskID string) error
}

type TimeEntries interface {
	// GetTimeEntryByID returns an entry by id.
	GetTimeEntryByID(ctx context.Context, id string) (domain.TimeEntry, error)

	// GetRunningByUser returns the user's running entry, ErrNotFound when
	// the user is idle.
	GetRunningByUser(ctx context.Context, userID string) (domain.TimeEntry, error)

	// CreateTimeEntry inserts a new entry. Inserting a running entry for a
	// user who already has one violates the partial unique index and
	// surfaces as ErrAlreadyExists; this is the atomic
	// insert-if-no-conflicting-row used by timer start.
	CreateTimeEntry(ctx context.Context, e domain.TimeEntry) error

	// StopTimeEntry sets stopped_at and duration_seconds on a running
	// entry. The row is never written again afterwards.
	StopTimeEntry(ctx context.Context, id string, stoppedAt time.Time, durationSeconds int64) error

	// ListByUserBetween returns a user's entries with started_at in
	// [start, end), ordered by started_at then id.
	ListByUserBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.TimeEntry, error)

	// ListByTask returns a task's entries ordered by started_at.
	ListByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error)
}
