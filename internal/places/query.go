// ABOUTME: Read-side location queries: lookup, category list, search filters
// ABOUTME: Also the moderation listing of every review across locations

package places

import (
	"strings"

	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/mapview"
	"github.com/2389/mapsapp/internal/store"
)

// AllCategories is the category filter value matching every location.
const AllCategories = "all"

// Filter narrows the visible locations.
type Filter struct {
	Query       string          // case-insensitive substring of the name
	Category    string          // "" or "all" matches any
	MaxDistance float64         // meters; 0 disables the distance filter
	From        *store.Waypoint // reference point; distance filter needs it
}

// ReviewEntry is one row of the moderation listing.
type ReviewEntry struct {
	LocationID   int64
	LocationName string
	Review       store.Review
}

// Get returns a copy of the location with id.
func (s *Service) Get(id int64) (*store.Location, error) {
	loc, err := s.state.Location(id)
	if err != nil {
		return nil, err
	}
	return loc.Clone(), nil
}

// List returns copies of every location in stored order.
func (s *Service) List() []*store.Location {
	out := make([]*store.Location, 0, len(s.state.Locations))
	for _, l := range s.state.Locations {
		out = append(out, l.Clone())
	}
	return out
}

// Categories returns "all" followed by each distinct category in
// first-seen order.
func (s *Service) Categories() []string {
	seen := make(map[string]bool)
	cats := []string{AllCategories}
	for _, l := range s.state.Locations {
		if seen[l.Category] {
			continue
		}
		seen[l.Category] = true
		cats = append(cats, l.Category)
	}
	return cats
}

// Search returns the locations passing f and re-renders the map with only
// those markers.
func (s *Service) Search(f Filter) []*store.Location {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	var out []*store.Location
	for _, l := range s.state.Locations {
		if q != "" && !strings.Contains(strings.ToLower(l.Name), q) {
			continue
		}
		if f.Category != "" && f.Category != AllCategories && l.Category != f.Category {
			continue
		}
		if f.MaxDistance > 0 && f.From != nil {
			if mapview.Distance(*f.From, store.Waypoint{Lat: l.Lat, Lng: l.Lng}) > f.MaxDistance {
				continue
			}
		}
		out = append(out, l)
	}

	s.renderer.RenderMarkers(mapview.Markers(out))

	clones := make([]*store.Location, 0, len(out))
	for _, l := range out {
		clones = append(clones, l.Clone())
	}
	return clones
}

// AllReviews lists every review on every location. Requires canModerate.
func (s *Service) AllReviews(actor auth.Actor) ([]ReviewEntry, error) {
	if err := actor.Require(auth.CanModerate); err != nil {
		return nil, err
	}

	var out []ReviewEntry
	for _, l := range s.state.Locations {
		for _, r := range l.Reviews {
			out = append(out, ReviewEntry{
				LocationID:   l.ID,
				LocationName: l.Name,
				Review:       r,
			})
		}
	}
	return out, nil
}

// CanEdit reports whether actor may edit the location, for showing or
// hiding the edit control.
func CanEdit(actor auth.Actor, l *store.Location) bool {
	return actor.CanOrOwns(auth.CanEditLocation, l.OwnerID)
}

// CanDeleteReviews reports whether actor may delete reviews on l.
func CanDeleteReviews(actor auth.Actor, l *store.Location) bool {
	return actor.CanOrOwns(auth.CanModerate, l.OwnerID)
}
