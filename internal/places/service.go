// ABOUTME: Location and review mutation service gated by the permission model
// ABOUTME: Every mutation checks capability or ownership, then persists locations

package places

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/mapsapp/internal/appstate"
	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/mapview"
	"github.com/2389/mapsapp/internal/store"
)

// Defaults applied to new locations when the input leaves them empty.
const (
	DefaultCategory = "Misc"
	DefaultHours    = "09:00-18:00"
	anonymousAuthor = "Anonymous"
)

// ErrValidation is returned for malformed input. It is the same value as
// appstate.ErrValidation.
var ErrValidation = appstate.ErrValidation

// LocationInput holds the fields for a new location.
type LocationInput struct {
	Name     string  `validate:"required"`
	Category string
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lng      float64 `validate:"gte=-180,lte=180"`
	Address  string
	Hours    string
	Desc     string
	OwnerID  string
}

// Patch lists the editable location fields. Nil or empty values keep the
// current value.
type Patch struct {
	Name   *string
	Desc   *string
	Hours  *string
	Status *store.LocationStatus
}

type reviewInput struct {
	Rating int    `validate:"gte=1,lte=5"`
	Text   string `validate:"required"`
}

// Service mutates locations and their reviews.
type Service struct {
	state    *appstate.State
	renderer mapview.Renderer
	audit    store.AuditStore
	logger   *slog.Logger
}

// NewService creates a location service. renderer and audit may be nil.
func NewService(st *appstate.State, renderer mapview.Renderer, audit store.AuditStore) *Service {
	if renderer == nil {
		renderer = mapview.NopRenderer{}
	}
	return &Service{
		state:    st,
		renderer: renderer,
		audit:    audit,
		logger:   st.Logger().With("component", "places"),
	}
}

// AddLocation creates a location. Requires canAddLocation.
func (s *Service) AddLocation(ctx context.Context, actor auth.Actor, in LocationInput) (*store.Location, error) {
	if err := actor.Require(auth.CanAddLocation); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := appstate.Validate(in); err != nil {
		return nil, err
	}

	loc := &store.Location{
		ID:       s.state.NextLocationID(),
		Name:     in.Name,
		Category: defaultString(in.Category, DefaultCategory),
		Lat:      in.Lat,
		Lng:      in.Lng,
		Address:  in.Address,
		Hours:    defaultString(in.Hours, DefaultHours),
		Status:   store.StatusOpen,
		Desc:     in.Desc,
		OwnerID:  in.OwnerID,
		Photos:   []string{},
		Reviews:  []store.Review{},
	}
	s.state.Locations = append(s.state.Locations, loc)

	s.logger.Info("location added", "id", loc.ID, "name", loc.Name, "actor", actor.UserID)
	s.record(ctx, actor, store.AuditAddLocation, "location", locationKey(loc.ID), map[string]any{"name": loc.Name})
	s.render()

	if err := s.state.SaveLocations(ctx); err != nil {
		return loc.Clone(), err
	}
	return loc.Clone(), nil
}

// EditLocation applies patch to a location. Requires canEditLocation; an
// owner-role actor must also own the location.
func (s *Service) EditLocation(ctx context.Context, actor auth.Actor, id int64, patch Patch) (*store.Location, error) {
	if !actor.Can(auth.CanEditLocation) && actor.Role != auth.RoleOwner {
		return nil, actor.Require(auth.CanEditLocation)
	}

	loc, err := s.state.Location(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanOrOwns(auth.CanEditLocation, loc.OwnerID) {
		return nil, fmt.Errorf("%w: location %d is not owned by %s", auth.ErrPermissionDenied, id, actor.UserID)
	}

	if patch.Status != nil && *patch.Status != "" && !patch.Status.Valid() {
		return nil, appstate.Invalid("status must be %q or %q, got %q", store.StatusOpen, store.StatusClosed, *patch.Status)
	}

	applyString(&loc.Name, patch.Name)
	applyString(&loc.Desc, patch.Desc)
	applyString(&loc.Hours, patch.Hours)
	if patch.Status != nil && *patch.Status != "" {
		loc.Status = *patch.Status
	}

	s.logger.Info("location edited", "id", id, "actor", actor.UserID)
	s.record(ctx, actor, store.AuditEditLocation, "location", locationKey(id), nil)
	s.render()

	if err := s.state.SaveLocations(ctx); err != nil {
		return loc.Clone(), err
	}
	return loc.Clone(), nil
}

// DeleteLocation removes a location with its reviews and prunes it from
// every user's favorites. Requires canModerate.
func (s *Service) DeleteLocation(ctx context.Context, actor auth.Actor, id int64) error {
	if err := actor.Require(auth.CanModerate); err != nil {
		return err
	}

	idx := -1
	for i, l := range s.state.Locations {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("location %d: %w", id, store.ErrNotFound)
	}

	s.state.Locations = append(s.state.Locations[:idx], s.state.Locations[idx+1:]...)

	pruned := false
	for userID, ids := range s.state.Favorites {
		kept := ids[:0]
		for _, favID := range ids {
			if favID != id {
				kept = append(kept, favID)
			}
		}
		if len(kept) != len(ids) {
			pruned = true
		}
		s.state.Favorites[userID] = kept
	}

	s.logger.Info("location deleted", "id", id, "actor", actor.UserID, "favorites_pruned", pruned)
	s.record(ctx, actor, store.AuditDeleteLocation, "location", locationKey(id), nil)
	s.render()

	if err := s.state.SaveLocations(ctx); err != nil {
		return err
	}
	if pruned {
		if err := s.state.SaveFavorites(ctx); err != nil {
			return err
		}
	}
	return nil
}

// AddReview appends a review to a location. Requires canReview. author
// defaults to the actor's name.
func (s *Service) AddReview(ctx context.Context, actor auth.Actor, locationID int64, author string, rating int, text string) (*store.Review, error) {
	if err := actor.Require(auth.CanReview); err != nil {
		return nil, err
	}

	loc, err := s.state.Location(locationID)
	if err != nil {
		return nil, err
	}

	in := reviewInput{Rating: rating, Text: strings.TrimSpace(text)}
	if err := appstate.Validate(in); err != nil {
		return nil, err
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = defaultString(actor.Name, anonymousAuthor)
	}

	review := store.Review{
		ID:     "review_" + uuid.New().String(),
		Author: author,
		Rating: in.Rating,
		Text:   in.Text,
	}
	loc.Reviews = append(loc.Reviews, review)

	s.logger.Info("review added", "location_id", locationID, "review_id", review.ID, "rating", review.Rating)
	s.record(ctx, actor, store.AuditAddReview, "review", review.ID, map[string]any{"location_id": locationID})

	if err := s.state.SaveLocations(ctx); err != nil {
		return &review, err
	}
	return &review, nil
}

// DeleteReview removes a review. Requires canModerate or ownership of the
// parent location by an owner-role actor.
func (s *Service) DeleteReview(ctx context.Context, actor auth.Actor, locationID int64, reviewID string) error {
	if !actor.Can(auth.CanModerate) && actor.Role != auth.RoleOwner {
		return actor.Require(auth.CanModerate)
	}

	loc, err := s.state.Location(locationID)
	if err != nil {
		return err
	}
	if !actor.CanOrOwns(auth.CanModerate, loc.OwnerID) {
		return fmt.Errorf("%w: location %d is not owned by %s", auth.ErrPermissionDenied, locationID, actor.UserID)
	}

	idx := loc.ReviewIndex(reviewID)
	if idx < 0 {
		return fmt.Errorf("review %q: %w", reviewID, store.ErrNotFound)
	}
	loc.Reviews = append(loc.Reviews[:idx], loc.Reviews[idx+1:]...)

	s.logger.Info("review deleted", "location_id", locationID, "review_id", reviewID, "actor", actor.UserID)
	s.record(ctx, actor, store.AuditDeleteReview, "review", reviewID, map[string]any{"location_id": locationID})

	return s.state.SaveLocations(ctx)
}

// Render pushes every location marker to the renderer.
func (s *Service) Render() {
	s.render()
}

func (s *Service) render() {
	s.renderer.RenderMarkers(mapview.Markers(s.state.Locations))
}

// record appends an audit entry. Audit failures are logged, not returned.
func (s *Service) record(ctx context.Context, actor auth.Actor, action store.AuditAction, targetType, targetID string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &store.AuditEntry{
		ActorID:    actor.UserID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	}
	if err := s.audit.AppendAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to append audit log", "action", action, "error", err)
	}
}

func locationKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func applyString(dst *string, v *string) {
	if v == nil {
		return
	}
	if trimmed := strings.TrimSpace(*v); trimmed != "" {
		*dst = trimmed
	}
}
