package domain

import "time"

// Status is a task's kanban lane.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is a known lane.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a kanban item on a board. Position is zero-based within the
// (board, status) lane. Positions are advisory: lanes are listed sorted by
// (position, id) and the ordering engine never renumbers siblings, so gaps
// and duplicates after moves are tolerated.
type Task struct {
	ID          string
	BoardID     string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Position    int64
	AssigneeID  *string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
