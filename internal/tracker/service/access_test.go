package service

import (
	"testing"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/stretchr/testify/require"
)

func TestCanAccessBoard(t *testing.T) {
	t.Parallel()

	owner := domain.User{ID: "u-owner", Role: domain.RoleUser}
	stranger := domain.User{ID: "u-stranger", Role: domain.RoleUser}
	admin := domain.User{ID: "u-admin", Role: domain.RoleAdmin}
	anonymous := domain.User{}

	private := domain.Board{ID: "b-private", OwnerID: owner.ID}
	public := domain.Board{ID: "b-public", OwnerID: owner.ID, IsPublic: true}

	t.Run("owner gets full access", func(t *testing.T) {
		require.True(t, CanAccessBoard(owner, private, ActionRead))
		require.True(t, CanAccessBoard(owner, private, ActionWrite))
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		require.True(t, CanAccessBoard(admin, private, ActionRead))
		require.True(t, CanAccessBoard(admin, private, ActionWrite))
	})

	t.Run("stranger denied on private boards", func(t *testing.T) {
		require.False(t, CanAccessBoard(stranger, private, ActionRead))
		require.False(t, CanAccessBoard(stranger, private, ActionWrite))
	})

	t.Run("public boards are read only for non-owners", func(t *testing.T) {
		require.True(t, CanAccessBoard(stranger, public, ActionRead))
		require.False(t, CanAccessBoard(stranger, public, ActionWrite))
	})

	t.Run("anonymous may read public boards", func(t *testing.T) {
		require.True(t, CanAccessBoard(anonymous, public, ActionRead))
		require.False(t, CanAccessBoard(anonymous, public, ActionWrite))
		require.False(t, CanAccessBoard(anonymous, private, ActionRead))
	})
}
