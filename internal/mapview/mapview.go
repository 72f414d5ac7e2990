// ABOUTME: Thin adapter between the core and an external map/routing library
// ABOUTME: Markers, route overlays and user geolocation as plain data shapes

package mapview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/2389/mapsapp/internal/store"
)

// ErrGeolocationUnavailable is returned when no position can be obtained,
// either because positioning is unsupported or the user denied it.
var ErrGeolocationUnavailable = errors.New("geolocation unavailable")

// Marker describes one location pin. Clicking it yields LocationID.
type Marker struct {
	LocationID int64
	Lat        float64
	Lng        float64
	Label      string
}

// Renderer draws markers and route overlays. Implementations own all
// rendering and clustering; the core only hands them data.
type Renderer interface {
	RenderMarkers(markers []Marker)
	ShowRoute(waypoints []store.Waypoint)
}

// Locator resolves the user's current position.
type Locator interface {
	Locate(ctx context.Context) (store.Waypoint, error)
}

// MarkerFor builds the marker descriptor for a location.
func MarkerFor(l *store.Location) Marker {
	return Marker{
		LocationID: l.ID,
		Lat:        l.Lat,
		Lng:        l.Lng,
		Label:      l.Name,
	}
}

// Markers builds descriptors for every location, preserving order.
func Markers(locs []*store.Location) []Marker {
	out := make([]Marker, 0, len(locs))
	for _, l := range locs {
		out = append(out, MarkerFor(l))
	}
	return out
}

// OnUserLocated runs a single geolocation attempt bounded by timeout and
// passes the position to fn. There is no retry.
func OnUserLocated(ctx context.Context, loc Locator, timeout time.Duration, fn func(store.Waypoint)) error {
	if loc == nil {
		return ErrGeolocationUnavailable
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pos, err := loc.Locate(ctx)
	if err != nil {
		if errors.Is(err, ErrGeolocationUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrGeolocationUnavailable, err)
	}
	fn(pos)
	return nil
}

// RouteTo locates the user and asks r to draw a two-point route to target.
// It returns the waypoints drawn so callers can offer to save them.
func RouteTo(ctx context.Context, loc Locator, timeout time.Duration, r Renderer, target store.Waypoint) ([]store.Waypoint, error) {
	var route []store.Waypoint
	err := OnUserLocated(ctx, loc, timeout, func(from store.Waypoint) {
		route = []store.Waypoint{from, target}
		r.ShowRoute(route)
	})
	if err != nil {
		return nil, err
	}
	return route, nil
}

const earthRadiusMeters = 6371008.8

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b store.Waypoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// ValidCoordinate reports whether p is a real latitude/longitude pair.
func ValidCoordinate(p store.Waypoint) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
