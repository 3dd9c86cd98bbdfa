package domain

import "time"

// Board is a project grouping tasks. Deleting a board cascades to its
// tasks and, through them, their time entries (enforced by the schema).
type Board struct {
	ID          string
	Name        string
	Description string
	IsPublic    bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
