// ABOUTME: Single-actor session controller: login, guest continuation, logout
// ABOUTME: Resolves identities against the user registry and the block list

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/mapsapp/internal/appstate"
	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/store"
)

// Status is the session lifecycle state.
type Status int

const (
	Anonymous Status = iota
	Authenticating
	Active
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

const guestName = "Guest"

// ErrRoleMismatch is returned when a named login asks for a role other than
// the one the registered user holds.
var ErrRoleMismatch = errors.New("role does not match registered user")

// Manager owns the current actor. Exactly one actor is current at a time.
type Manager struct {
	state  *appstate.State
	logger *slog.Logger

	status Status
	actor  auth.Actor
}

// NewManager creates a session manager in the Anonymous state.
func NewManager(st *appstate.State) *Manager {
	return &Manager{
		state:  st,
		logger: st.Logger().With("component", "session"),
	}
}

// Login resolves name and role to an identity and makes it current.
//
// Guests get a fresh ephemeral id that is never registered. Other roles
// reuse a registered user with the same name when it holds the requested
// role, fail with ErrRoleMismatch when it holds another, and otherwise
// register a new user. A blocked id fails with auth.ErrBlockedUser. Any
// failure leaves the session Anonymous.
func (m *Manager) Login(ctx context.Context, name, role string) (auth.Actor, error) {
	m.Logout()

	r, err := auth.ParseRole(strings.TrimSpace(role))
	if err != nil {
		return auth.Actor{}, err
	}
	m.status = Authenticating

	actor, isNew, err := m.resolve(strings.TrimSpace(name), r)
	if err != nil {
		m.status = Anonymous
		m.logger.Warn("login rejected", "name", name, "role", r, "error", err)
		return auth.Actor{}, err
	}
	if m.state.IsBlocked(actor.UserID) {
		m.status = Anonymous
		m.logger.Warn("blocked login rejected", "user", actor.UserID)
		return auth.Actor{}, fmt.Errorf("%w: %s", auth.ErrBlockedUser, actor.UserID)
	}

	var saveErr error
	if isNew {
		m.state.Users = append(m.state.Users, &store.User{
			ID:   actor.UserID,
			Name: actor.Name,
			Role: string(actor.Role),
		})
		saveErr = m.state.SaveUsers(ctx)
	}

	m.actor = actor
	m.status = Active
	m.logger.Info("logged in", "user", actor.UserID, "role", actor.Role, "new", isNew)

	if saveErr != nil {
		return actor, saveErr
	}
	return actor, nil
}

func (m *Manager) resolve(name string, role auth.Role) (auth.Actor, bool, error) {
	if role == auth.RoleGuest {
		if name == "" {
			name = guestName
		}
		return auth.Actor{UserID: "guest_" + uuid.New().String(), Name: name, Role: role}, false, nil
	}

	if name == "" {
		name = string(role)
	}
	// The seeded guest profile is never an identity for named logins
	if u, ok := m.state.UserByName(name); ok && u.ID != appstate.GuestProfileID {
		stored, err := auth.ParseRole(u.Role)
		if err != nil {
			m.logger.Warn("registered user has unknown role", "user", u.ID, "role", u.Role)
			return auth.Actor{}, false, fmt.Errorf("%w: %s has role %q", ErrRoleMismatch, u.Name, u.Role)
		}
		if stored != role {
			return auth.Actor{}, false, fmt.Errorf("%w: %s is registered as %s", ErrRoleMismatch, u.Name, stored)
		}
		return auth.Actor{UserID: u.ID, Name: u.Name, Role: stored}, false, nil
	}
	return auth.Actor{UserID: "user_" + uuid.New().String(), Name: name, Role: role}, true, nil
}

// ContinueAsGuest logs in with the guest role.
func (m *Manager) ContinueAsGuest(ctx context.Context) (auth.Actor, error) {
	return m.Login(ctx, "", string(auth.RoleGuest))
}

// Logout discards the current actor. Registered users are kept.
func (m *Manager) Logout() {
	if m.status == Active {
		m.logger.Info("logged out", "user", m.actor.UserID)
	}
	m.actor = auth.Actor{}
	m.status = Anonymous
}

// Current returns the active actor. ok is false unless the session is Active.
func (m *Manager) Current() (auth.Actor, bool) {
	if m.status != Active {
		return auth.Actor{}, false
	}
	return m.actor, true
}

// Status returns the lifecycle state.
func (m *Manager) Status() Status {
	return m.status
}

// Refresh re-reads the current actor's role from the registry so role
// changes made by an admin apply to a live session.
func (m *Manager) Refresh() {
	if m.status != Active {
		return
	}
	u, err := m.state.User(m.actor.UserID)
	if err != nil {
		return
	}
	if r, err := auth.ParseRole(u.Role); err == nil {
		m.actor.Role = r
	}
}
