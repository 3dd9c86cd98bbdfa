package domain

import "time"

// TimeEntry records a stopwatch session against a task. StoppedAt nil
// means the timer is still running; DurationSeconds is derived exactly
// once at stop time and the entry is immutable afterwards.
//
// Invariant: at most one entry per user may have a nil StoppedAt. The
// schema backs this with a partial unique index so the invariant holds
// even under concurrent start requests.
type TimeEntry struct {
	ID              string
	TaskID          string
	UserID          string
	StartedAt       time.Time
	StoppedAt       *time.Time
	DurationSeconds *int64
	Note            string
}

// Running reports whether the entry's timer is still going.
func (e TimeEntry) Running() bool { return e.StoppedAt == nil }
