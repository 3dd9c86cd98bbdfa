package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/pkg/clockx"
	"github.com/tracklane/tracklane/pkg/idx"
	"github.com/tracklane/tracklane/pkg/slogx"
)

var (
	ErrTimerRunning      = errors.New("timer_already_running")
	ErrNoTimerRunning    = errors.New("no_timer_running")
	ErrTimerTaskMismatch = errors.New("timer_task_mismatch")
	ErrTimerForbidden    = errors.New("timer_forbidden")
)

// TimerService owns the stopwatch lifecycle. A user has at most one
// running entry; the storage-level partial unique index makes Start
// atomic so two concurrent starts cannot both win.
type TimerService struct {
	Store store.Store
	Clock clockx.Clock
}

// Start opens a running time entry for subject against taskID.
//
// The task must exist and, when it has an assignee, the assignee must be
// subject. A user with a timer already running gets ErrTimerRunning
// regardless of which task that timer is on.
func (s *TimerService) Start(ctx context.Context, subject domain.User, taskID, note string) (domain.TimeEntry, error) {
	task, err := s.Store.Tasks().GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TimeEntry{}, ErrTaskNotFound
		}
		return domain.TimeEntry{}, err
	}

	if task.AssigneeID != nil && *task.AssigneeID != subject.ID {
		return domain.TimeEntry{}, ErrTimerForbidden
	}

	now := s.now()
	entry := domain.TimeEntry{
		ID:        idx.NewAt(now).String(),
		TaskID:    task.ID,
		UserID:    subject.ID,
		StartedAt: now,
		Note:      note,
	}

	// The partial unique index on (user_id) WHERE stopped_at IS NULL
	// turns a lost race into ErrAlreadyExists here.
	if err := s.Store.TimeEntries().CreateTimeEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.TimeEntry{}, ErrTimerRunning
		}
		return domain.TimeEntry{}, err
	}

	slogx.FromContext(ctx).Info("timer started",
		slog.String("entry_id", entry.ID),
		slog.String("task_id", task.ID),
		slog.String("user_id", subject.ID),
	)

	return entry, nil
}

// Stop closes subject's running entry and fixes its duration.
//
// taskID is optional: when non-empty the running entry must belong to
// that task, otherwise ErrTimerTaskMismatch. Duration is whole seconds,
// floored, never negative.
func (s *TimerService) Stop(ctx context.Context, subject domain.User, taskID string) (domain.TimeEntry, error) {
	entry, err := s.Store.TimeEntries().GetRunningByUser(ctx, subject.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TimeEntry{}, ErrNoTimerRunning
		}
		return domain.TimeEntry{}, err
	}

	if taskID != "" && entry.TaskID != taskID {
		return domain.TimeEntry{}, ErrTimerTaskMismatch
	}

	stoppedAt := s.now()
	duration := int64(stoppedAt.Sub(entry.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}

	if err := s.Store.TimeEntries().StopTimeEntry(ctx, entry.ID, stoppedAt, duration); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Someone else stopped it between the read and the write.
			return domain.TimeEntry{}, ErrNoTimerRunning
		}
		return domain.TimeEntry{}, err
	}

	slogx.FromContext(ctx).Info("timer stopped",
		slog.String("entry_id", entry.ID),
		slog.String("task_id", entry.TaskID),
		slog.Int64("duration_seconds", duration),
	)

	entry.StoppedAt = &stoppedAt
	entry.DurationSeconds = &duration
	return entry, nil
}

// Running returns subject's running entry, ErrNoTimerRunning when idle.
func (s *TimerService) Running(ctx context.Context, subject domain.User) (domain.TimeEntry, error) {
	entry, err := s.Store.TimeEntries().GetRunningByUser(ctx, subject.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TimeEntry{}, ErrNoTimerRunning
	}
	return entry, err
}

func (s *TimerService) now() time.Time {
	if s.Clock == nil {
		return clockx.System.Now()
	}
	return s.Clock.Now().UTC()
}
