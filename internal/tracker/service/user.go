package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tracklane/tracklane/internal/tracker/domain"
	"github.com/tracklane/tracklane/internal/tracker/store"
	"github.com/tracklane/tracklane/pkg/cryptox"
	"github.com/tracklane/tracklane/pkg/idx"
	"github.com/tracklane/tracklane/pkg/slogx"
)

var (
	ErrUsernameTaken      = errors.New("username_taken")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrSelfDelete         = errors.New("self_delete")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrForbidden          = errors.New("forbidden")
)

type UserService struct {
	Store store.Store
}

// RegisterRequest carries the inputs for creating an account.
type RegisterRequest struct {
	Username string
	Password string
	Email    *string
	FullName string
	Role     string // defaults to user when empty
}

// Register creates a new account with an argon2id password hash.
// Username and email uniqueness are enforced; races on the same name
// surface through the store's unique constraints.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	log := slogx.FromContext(ctx)

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return domain.User{}, ErrInvalidRole
	}

	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	if req.Email != nil {
		if _, err := s.Store.Users().GetUserByEmail(ctx, *req.Email); err == nil {
			return domain.User{}, ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, err
		}
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        req.Email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	// Reload to pick up the store-assigned timestamps.
	return s.Store.Users().GetUserByID(ctx, user.ID)
}

// Authenticate verifies a username/password pair and returns the user.
// Lookup failures and bad passwords collapse into ErrInvalidCredentials
// so callers cannot probe for valid usernames.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Info("login failed", slog.String("username", username))
		return domain.User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return domain.User{}, ErrAccountDisabled
	}

	return user, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// ListUsers returns a page of users ordered by creation.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int64) ([]domain.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.Store.Users().ListUsers(ctx, limit, offset)
}

// UpdateRequest carries the mutable user fields. Nil pointers leave the
// current value untouched.
type UpdateRequest struct {
	Email    *string
	FullName *string
	Role     *string
	IsActive *bool
}

// UpdateUser applies an admin-driven update to a user profile.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req UpdateRequest) (domain.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if req.Email != nil {
		existing, err := s.Store.Users().GetUserByEmail(ctx, *req.Email)
		if err == nil && existing.ID != userID {
			return domain.User{}, ErrEmailTaken
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, err
		}
		user.Email = req.Email
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return domain.User{}, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.Store.Users().UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password before setting a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

// DeleteUser removes an account. Admins cannot delete themselves so the
// system is never left without a working admin mid-session.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrSelfDelete
	}

	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
