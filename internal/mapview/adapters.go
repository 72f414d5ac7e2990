// ABOUTME: Built-in Renderer and Locator implementations for headless use
// ABOUTME: LogRenderer writes slog lines, StaticLocator reports a fixed position

package mapview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/2389/mapsapp/internal/store"
)

// LogRenderer records what would be drawn and logs it.
type LogRenderer struct {
	mu      sync.Mutex
	logger  *slog.Logger
	markers []Marker
	route   []store.Waypoint
}

// NewLogRenderer creates a LogRenderer. Pass nil logger for default.
func NewLogRenderer(logger *slog.Logger) *LogRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRenderer{logger: logger.With("component", "mapview")}
}

// RenderMarkers replaces the current marker set.
func (r *LogRenderer) RenderMarkers(markers []Marker) {
	r.mu.Lock()
	r.markers = append([]Marker(nil), markers...)
	r.mu.Unlock()

	r.logger.Debug("render markers", "count", len(markers))
}

// ShowRoute replaces the current route overlay.
func (r *LogRenderer) ShowRoute(waypoints []store.Waypoint) {
	r.mu.Lock()
	r.route = append([]store.Waypoint(nil), waypoints...)
	r.mu.Unlock()

	r.logger.Debug("show route", "waypoints", len(waypoints))
}

// Markers returns the markers last rendered.
func (r *LogRenderer) Markers() []Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Marker(nil), r.markers...)
}

// Route returns the route last shown.
func (r *LogRenderer) Route() []store.Waypoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]store.Waypoint(nil), r.route...)
}

// StaticLocator always reports the same position. A nil *StaticLocator
// behaves as a device without positioning.
type StaticLocator struct {
	Position store.Waypoint
}

// Locate returns the fixed position.
func (l *StaticLocator) Locate(ctx context.Context) (store.Waypoint, error) {
	if l == nil {
		return store.Waypoint{}, ErrGeolocationUnavailable
	}
	if err := ctx.Err(); err != nil {
		return store.Waypoint{}, err
	}
	return l.Position, nil
}

// NopRenderer discards everything.
type NopRenderer struct{}

func (NopRenderer) RenderMarkers([]Marker)     {}
func (NopRenderer) ShowRoute([]store.Waypoint) {}

var (
	_ Renderer = (*LogRenderer)(nil)
	_ Renderer = NopRenderer{}
	_ Locator  = (*StaticLocator)(nil)
)
