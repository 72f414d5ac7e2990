// ABOUTME: User management operations for admins: list, block, unblock, set role
// ABOUTME: Every mutation requires canManageUsers and appends an audit entry

package admin

import (
	"context"
	"log/slog"
	"slices"

	"github.com/2389/mapsapp/internal/appstate"
	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/store"
)

// UserSummary is one row of the user listing.
type UserSummary struct {
	ID      string
	Name    string
	Role    string
	Blocked bool
}

// UserService manages the user registry and the block list.
type UserService struct {
	state  *appstate.State
	audit  store.AuditStore
	logger *slog.Logger
}

// NewUserService creates a UserService. audit may be nil.
func NewUserService(st *appstate.State, audit store.AuditStore) *UserService {
	return &UserService{
		state:  st,
		audit:  audit,
		logger: st.Logger().With("component", "admin"),
	}
}

// ListUsers returns every registered user. Requires canManageUsers.
func (s *UserService) ListUsers(actor auth.Actor) ([]UserSummary, error) {
	if err := actor.Require(auth.CanManageUsers); err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(s.state.Users))
	for _, u := range s.state.Users {
		out = append(out, UserSummary{
			ID:      u.ID,
			Name:    u.Name,
			Role:    u.Role,
			Blocked: u.Blocked || s.state.IsBlocked(u.ID),
		})
	}
	return out, nil
}

// BlockUser adds userID to the block list. Blocking is idempotent and ids
// that are not registered may be blocked too.
func (s *UserService) BlockUser(ctx context.Context, actor auth.Actor, userID string) error {
	if err := actor.Require(auth.CanManageUsers); err != nil {
		return err
	}
	if err := appstate.ValidateVar("user id", userID, "required"); err != nil {
		return err
	}

	if !s.state.IsBlocked(userID) {
		s.state.BlockedUsers = append(s.state.BlockedUsers, userID)
	}
	registered := s.setBlockedFlag(userID, true)

	s.logger.Info("user blocked", "user", userID, "registered", registered, "actor", actor.UserID)
	s.record(ctx, actor, store.AuditBlockUser, userID, nil)

	return s.persistBlock(ctx, registered)
}

// UnblockUser removes userID from the block list.
func (s *UserService) UnblockUser(ctx context.Context, actor auth.Actor, userID string) error {
	if err := actor.Require(auth.CanManageUsers); err != nil {
		return err
	}
	if err := appstate.ValidateVar("user id", userID, "required"); err != nil {
		return err
	}

	s.state.BlockedUsers = slices.DeleteFunc(s.state.BlockedUsers, func(id string) bool {
		return id == userID
	})
	registered := s.setBlockedFlag(userID, false)

	s.logger.Info("user unblocked", "user", userID, "actor", actor.UserID)
	s.record(ctx, actor, store.AuditUnblockUser, userID, nil)

	return s.persistBlock(ctx, registered)
}

// SetRole changes a registered user's role.
func (s *UserService) SetRole(ctx context.Context, actor auth.Actor, userID, role string) error {
	if err := actor.Require(auth.CanManageUsers); err != nil {
		return err
	}
	r, err := auth.ParseRole(role)
	if err != nil {
		return err
	}
	u, err := s.state.User(userID)
	if err != nil {
		return err
	}

	previous := u.Role
	u.Role = string(r)

	s.logger.Info("user role changed", "user", userID, "from", previous, "to", r, "actor", actor.UserID)
	s.record(ctx, actor, store.AuditSetRole, userID, map[string]any{"from": previous, "to": string(r)})

	return s.state.SaveUsers(ctx)
}

// AuditLog returns recent audit entries. Requires canManageUsers.
func (s *UserService) AuditLog(ctx context.Context, actor auth.Actor, f store.AuditFilter) ([]store.AuditEntry, error) {
	if err := actor.Require(auth.CanManageUsers); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.ListAuditLog(ctx, f)
}

func (s *UserService) setBlockedFlag(userID string, blocked bool) bool {
	u, err := s.state.User(userID)
	if err != nil {
		return false
	}
	u.Blocked = blocked
	return true
}

func (s *UserService) persistBlock(ctx context.Context, registered bool) error {
	if err := s.state.SaveBlockedUsers(ctx); err != nil {
		return err
	}
	if registered {
		return s.state.SaveUsers(ctx)
	}
	return nil
}

// record appends an audit entry. Failures are logged and ignored.
func (s *UserService) record(ctx context.Context, actor auth.Actor, action store.AuditAction, userID string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.AppendAuditLog(ctx, &store.AuditEntry{
		ActorID:    actor.UserID,
		Action:     action,
		TargetType: "user",
		TargetID:   userID,
		Detail:     detail,
	})
	if err != nil {
		s.logger.Warn("failed to append audit log", "action", action, "error", err)
	}
}
