// ABOUTME: Per-user favorites and saved personal routes
// ABOUTME: Every operation touches only the acting user's own entries

package personal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/mapsapp/internal/appstate"
	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/mapview"
	"github.com/2389/mapsapp/internal/store"
)

const routeNameLayout = "2006-01-02 15:04:05"

// Service manages favorites and personal routes.
type Service struct {
	state    *appstate.State
	renderer mapview.Renderer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a personal-data service. renderer may be nil.
func NewService(st *appstate.State, renderer mapview.Renderer) *Service {
	if renderer == nil {
		renderer = mapview.NopRenderer{}
	}
	return &Service{
		state:    st,
		renderer: renderer,
		logger:   st.Logger().With("component", "personal"),
		now:      time.Now,
	}
}

// ToggleFavorite adds the location to the actor's favorites, or removes it
// when already present. added reports which happened. Requires canFav.
func (s *Service) ToggleFavorite(ctx context.Context, actor auth.Actor, locationID int64) (bool, error) {
	if err := actor.Require(auth.CanFav); err != nil {
		return false, err
	}
	if _, err := s.state.Location(locationID); err != nil {
		return false, err
	}

	ids := s.state.Favorites[actor.UserID]
	added := true
	for i, id := range ids {
		if id == locationID {
			ids = append(ids[:i], ids[i+1:]...)
			added = false
			break
		}
	}
	if added {
		ids = append(ids, locationID)
	}
	s.state.Favorites[actor.UserID] = ids

	s.logger.Debug("favorite toggled", "user", actor.UserID, "location_id", locationID, "added", added)
	return added, s.state.SaveFavorites(ctx)
}

// IsFavorite reports whether the location is in the actor's favorites.
func (s *Service) IsFavorite(actor auth.Actor, locationID int64) bool {
	for _, id := range s.state.Favorites[actor.UserID] {
		if id == locationID {
			return true
		}
	}
	return false
}

// Favorites returns the actor's favorite locations in the order they were
// added. Ids of locations that no longer exist are skipped.
func (s *Service) Favorites(actor auth.Actor) []*store.Location {
	var out []*store.Location
	for _, id := range s.state.Favorites[actor.UserID] {
		loc, err := s.state.Location(id)
		if err != nil {
			continue
		}
		out = append(out, loc.Clone())
	}
	return out
}

// SavePersonalRoute stores a named route for the actor. An empty name gets a
// timestamped default. Requires canSaveRoutes.
func (s *Service) SavePersonalRoute(ctx context.Context, actor auth.Actor, name string, waypoints []store.Waypoint) (*store.PersonalRoute, error) {
	if err := actor.Require(auth.CanSaveRoutes); err != nil {
		return nil, err
	}
	if err := appstate.ValidateVar("waypoints", waypoints, "min=1"); err != nil {
		return nil, err
	}
	for i, wp := range waypoints {
		if !mapview.ValidCoordinate(wp) {
			return nil, appstate.Invalid("waypoint %d out of range: %v,%v", i, wp.Lat, wp.Lng)
		}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Route " + s.now().Format(routeNameLayout)
	}

	route := store.PersonalRoute{
		ID:        "route_" + uuid.New().String(),
		Name:      name,
		Waypoints: append([]store.Waypoint(nil), waypoints...),
	}
	s.state.PersonalRoutes[actor.UserID] = append(s.state.PersonalRoutes[actor.UserID], route)

	s.logger.Info("route saved", "user", actor.UserID, "route_id", route.ID, "waypoints", len(route.Waypoints))
	return &route, s.state.SavePersonalRoutes(ctx)
}

// PersonalRoutes returns a copy of the actor's saved routes.
func (s *Service) PersonalRoutes(actor auth.Actor) []store.PersonalRoute {
	routes := s.state.PersonalRoutes[actor.UserID]
	out := make([]store.PersonalRoute, 0, len(routes))
	for _, r := range routes {
		r.Waypoints = append([]store.Waypoint(nil), r.Waypoints...)
		out = append(out, r)
	}
	return out
}

// DeletePersonalRoute removes one of the actor's routes. Requires
// canSaveRoutes.
func (s *Service) DeletePersonalRoute(ctx context.Context, actor auth.Actor, routeID string) error {
	if err := actor.Require(auth.CanSaveRoutes); err != nil {
		return err
	}

	routes := s.state.PersonalRoutes[actor.UserID]
	idx := routeIndex(routes, routeID)
	if idx < 0 {
		return fmt.Errorf("route %q: %w", routeID, store.ErrNotFound)
	}
	s.state.PersonalRoutes[actor.UserID] = append(routes[:idx], routes[idx+1:]...)

	s.logger.Info("route deleted", "user", actor.UserID, "route_id", routeID)
	return s.state.SavePersonalRoutes(ctx)
}

// LoadRoute shows one of the actor's routes on the map.
func (s *Service) LoadRoute(actor auth.Actor, routeID string) (*store.PersonalRoute, error) {
	routes := s.state.PersonalRoutes[actor.UserID]
	idx := routeIndex(routes, routeID)
	if idx < 0 {
		return nil, fmt.Errorf("route %q: %w", routeID, store.ErrNotFound)
	}

	route := routes[idx]
	route.Waypoints = append([]store.Waypoint(nil), route.Waypoints...)
	s.renderer.ShowRoute(route.Waypoints)
	return &route, nil
}

func routeIndex(routes []store.PersonalRoute, id string) int {
	for i := range routes {
		if routes[i].ID == id {
			return i
		}
	}
	return -1
}
