// ABOUTME: Explicit application state holding every entity collection
// ABOUTME: Loads from the Store with demo defaults and persists whole collections

package appstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/mapsapp/internal/store"
)

// ErrValidation reports malformed input such as empty review text, an
// out-of-range rating or an empty waypoint list.
var ErrValidation = errors.New("validation error")

// State owns the in-memory collections. It is not safe for concurrent use;
// one controller owns it and runs each operation to completion.
type State struct {
	Locations      []*store.Location
	Users          []*store.User
	Favorites      store.Favorites
	PersonalRoutes store.PersonalRoutes
	BlockedUsers   []string

	store  store.Store
	base   *slog.Logger
	logger *slog.Logger
}

// Load reads every collection from s, falling back to the demo defaults for
// absent keys. Absent locations and users are written back so the store
// mirrors the state from the first run. A malformed stored value fails Load.
func Load(ctx context.Context, s store.Store, logger *slog.Logger) (*State, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st := &State{
		store:  s,
		base:   logger,
		logger: logger.With("component", "appstate"),
	}

	var locations []store.Location
	if err := store.LoadOr(ctx, s, store.KeyLocations, &locations, DemoLocations()); err != nil {
		return nil, fmt.Errorf("loading locations: %w", err)
	}
	for i := range locations {
		st.Locations = append(st.Locations, normalizeLocation(locations[i]))
	}

	var users []store.User
	if err := store.LoadOr(ctx, s, store.KeyUsers, &users, DemoUsers()); err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	for i := range users {
		u := users[i]
		st.Users = append(st.Users, &u)
	}

	if err := store.LoadOr(ctx, s, store.KeyFavorites, &st.Favorites, store.Favorites{}); err != nil {
		return nil, fmt.Errorf("loading favorites: %w", err)
	}
	if st.Favorites == nil {
		st.Favorites = store.Favorites{}
	}

	if err := store.LoadOr(ctx, s, store.KeyPersonalRoutes, &st.PersonalRoutes, store.PersonalRoutes{}); err != nil {
		return nil, fmt.Errorf("loading personal routes: %w", err)
	}
	if st.PersonalRoutes == nil {
		st.PersonalRoutes = store.PersonalRoutes{}
	}

	if err := store.LoadOr(ctx, s, store.KeyBlockedUsers, &st.BlockedUsers, []string{}); err != nil {
		return nil, fmt.Errorf("loading blocked users: %w", err)
	}

	// Mirror the seeded collections immediately, as the first run always did
	if err := st.SaveLocations(ctx); err != nil {
		return nil, err
	}
	if err := st.SaveUsers(ctx); err != nil {
		return nil, err
	}

	st.logger.Info("state loaded",
		"locations", len(st.Locations),
		"users", len(st.Users),
		"blocked", len(st.BlockedUsers),
	)
	return st, nil
}

func normalizeLocation(l store.Location) *store.Location {
	if l.Reviews == nil {
		l.Reviews = []store.Review{}
	}
	if l.Photos == nil {
		l.Photos = []string{}
	}
	if l.Status == "" {
		l.Status = store.StatusOpen
	}
	return &l
}

// persist writes one whole collection. A failure leaves memory ahead of the
// store; that divergence is logged and returned to the caller.
func (s *State) persist(ctx context.Context, key string, value any) error {
	if err := s.store.Save(ctx, key, value); err != nil {
		s.logger.Error("in-memory state diverged from store",
			"key", key,
			"error", err,
		)
		return fmt.Errorf("persisting %s: %w", key, err)
	}
	return nil
}

// SaveLocations persists the locations collection with embedded reviews.
func (s *State) SaveLocations(ctx context.Context) error {
	out := make([]store.Location, 0, len(s.Locations))
	for _, l := range s.Locations {
		out = append(out, *l)
	}
	return s.persist(ctx, store.KeyLocations, out)
}

// SaveUsers persists the user registry.
func (s *State) SaveUsers(ctx context.Context) error {
	out := make([]store.User, 0, len(s.Users))
	for _, u := range s.Users {
		out = append(out, *u)
	}
	return s.persist(ctx, store.KeyUsers, out)
}

// SaveFavorites persists every user's favorites.
func (s *State) SaveFavorites(ctx context.Context) error {
	return s.persist(ctx, store.KeyFavorites, s.Favorites)
}

// SavePersonalRoutes persists every user's saved routes.
func (s *State) SavePersonalRoutes(ctx context.Context) error {
	return s.persist(ctx, store.KeyPersonalRoutes, s.PersonalRoutes)
}

// SaveBlockedUsers persists the blocked id list.
func (s *State) SaveBlockedUsers(ctx context.Context) error {
	return s.persist(ctx, store.KeyBlockedUsers, s.BlockedUsers)
}

// Location returns the live location with id, or store.ErrNotFound.
func (s *State) Location(id int64) (*store.Location, error) {
	for _, l := range s.Locations {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("location %d: %w", id, store.ErrNotFound)
}

// NextLocationID returns one more than the largest id in use.
func (s *State) NextLocationID() int64 {
	var highest int64
	for _, l := range s.Locations {
		if l.ID > highest {
			highest = l.ID
		}
	}
	return highest + 1
}

// User returns the registered user with id, or store.ErrNotFound.
func (s *State) User(id string) (*store.User, error) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", id, store.ErrNotFound)
}

// UserByName returns the first registered user with name.
func (s *State) UserByName(name string) (*store.User, bool) {
	for _, u := range s.Users {
		if u.Name == name {
			return u, true
		}
	}
	return nil, false
}

// IsBlocked reports whether id is in the blocked list.
func (s *State) IsBlocked(id string) bool {
	for _, b := range s.BlockedUsers {
		if b == id {
			return true
		}
	}
	return false
}

// Logger returns the root logger passed to Load, without the appstate
// component, so services can attach their own.
func (s *State) Logger() *slog.Logger {
	return s.base
}
