package places

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/mapsapp/internal/store"
)

func names(locs []*store.Location) []string {
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.Name)
	}
	return out
}

func TestCategories(t *testing.T) {
	f := setupTestService(t)
	_, err := f.svc.AddLocation(context.Background(), moderator, LocationInput{Name: "Espresso Bar", Category: "Cafe", Lat: 1, Lng: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"all", "Cafe", "Park"}, f.svc.Categories())
}

func TestSearch(t *testing.T) {
	f := setupTestService(t)
	cafe := &store.Waypoint{Lat: 55.7558, Lng: 37.6176}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"Cafe Cappuccino", "Sunny Park"}},
		{"query is case-insensitive", Filter{Query: "SUNNY"}, []string{"Sunny Park"}},
		{"category", Filter{Category: "Cafe"}, []string{"Cafe Cappuccino"}},
		{"all category", Filter{Category: AllCategories}, []string{"Cafe Cappuccino", "Sunny Park"}},
		{"no match", Filter{Query: "museum"}, []string{}},
		{"distance", Filter{MaxDistance: 100, From: cafe}, []string{"Cafe Cappuccino"}},
		{"distance without origin", Filter{MaxDistance: 100}, []string{"Cafe Cappuccino", "Sunny Park"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.svc.Search(tt.filter)
			assert.Equal(t, tt.want, names(got))
			assert.Len(t, f.renderer.Markers(), len(tt.want))
		})
	}
}

func TestGetReturnsCopy(t *testing.T) {
	f := setupTestService(t)

	loc, err := f.svc.Get(1)
	require.NoError(t, err)
	loc.Name = "mutated"
	loc.Reviews[0].Text = "mutated"

	assert.Equal(t, "Cafe Cappuccino", f.state.Locations[0].Name)
	assert.Equal(t, "Excellent!", f.state.Locations[0].Reviews[0].Text)
}

func TestAllReviews(t *testing.T) {
	f := setupTestService(t)
	_, err := f.svc.AddReview(context.Background(), ivan, 2, "", 4, "green")
	require.NoError(t, err)

	_, err = f.svc.AllReviews(ivan)
	require.Error(t, err)

	entries, err := f.svc.AllReviews(moderator)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Cafe Cappuccino", entries[0].LocationName)
	assert.Equal(t, "101", entries[0].Review.ID)
	assert.Equal(t, int64(2), entries[1].LocationID)
}

func TestCanEditHelpers(t *testing.T) {
	owned := &store.Location{ID: 9, OwnerID: owner.UserID}
	other := &store.Location{ID: 10}

	assert.True(t, CanEdit(owner, owned))
	assert.False(t, CanEdit(owner, other))
	assert.True(t, CanEdit(moderator, other))
	assert.False(t, CanEdit(ivan, owned))

	assert.True(t, CanDeleteReviews(owner, owned))
	assert.False(t, CanDeleteReviews(ivan, owned))
}
