package service

import "github.com/tracklane/tracklane/internal/tracker/domain"

// Action is the kind of access being evaluated against a board.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// CanAccessBoard decides whether subject may perform action on board.
//
// Admins may do anything. Owners may do anything to their own boards.
// Public boards grant read access to any authenticated user; writes on
// public boards remain owner/admin only.
func CanAccessBoard(subject domain.User, board domain.Board, action Action) bool {
	if subject.IsAdmin() {
		return true
	}
	if board.OwnerID == subject.ID {
		return true
	}
	return action == ActionRead && board.IsPublic
}
