package personal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/mapsapp/internal/appstate"
	"github.com/2389/mapsapp/internal/auth"
	"github.com/2389/mapsapp/internal/mapview"
	"github.com/2389/mapsapp/internal/store"
)

var (
	guest = auth.Actor{UserID: "guest_1", Role: auth.RoleGuest}
	alice = auth.Actor{UserID: "user_alice", Name: "Alice", Role: auth.RoleUser}
	bob   = auth.Actor{UserID: "user_bob", Name: "Bob", Role: auth.RoleUser}
	admin = auth.Actor{UserID: "user_admin", Name: "Admin", Role: auth.RoleAdmin}
)

func setupTestService(t *testing.T) (*Service, *appstate.State, *store.MemoryStore, *mapview.LogRenderer) {
	t.Helper()

	mem := store.NewMemoryStore("")
	st, err := appstate.Load(context.Background(), mem, nil)
	require.NoError(t, err)

	r := mapview.NewLogRenderer(nil)
	svc := NewService(st, r)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return svc, st, mem, r
}

func TestToggleFavorite_IsItsOwnInverse(t *testing.T) {
	svc, st, _, _ := setupTestService(t)
	ctx := context.Background()

	st.Favorites[alice.UserID] = []int64{2}
	before := append([]int64(nil), st.Favorites[alice.UserID]...)

	added, err := svc.ToggleFavorite(ctx, alice, 1)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, svc.IsFavorite(alice, 1))

	added, err = svc.ToggleFavorite(ctx, alice, 1)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, svc.IsFavorite(alice, 1))

	assert.Equal(t, before, st.Favorites[alice.UserID])
}

func TestToggleFavorite_OnlyOwnEntries(t *testing.T) {
	svc, st, mem, _ := setupTestService(t)
	ctx := context.Background()

	st.Favorites[bob.UserID] = []int64{1}

	_, err := svc.ToggleFavorite(ctx, admin, 1)
	require.NoError(t, err)
	_, err = svc.ToggleFavorite(ctx, alice, 2)
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, st.Favorites[bob.UserID])
	assert.Equal(t, []int64{1}, st.Favorites[admin.UserID])
	assert.Equal(t, []int64{2}, st.Favorites[alice.UserID])

	var stored store.Favorites
	found, err := mem.Load(ctx, store.KeyFavorites, &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, st.Favorites, stored)
}

func TestToggleFavorite_Errors(t *testing.T) {
	svc, st, _, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, guest, 1)
	assert.ErrorIs(t, err, auth.ErrPermissionDenied)
	assert.Empty(t, st.Favorites)

	_, err = svc.ToggleFavorite(ctx, alice, 404)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, st.Favorites[alice.UserID])
}

func TestFavorites_SkipsMissingLocations(t *testing.T) {
	svc, st, _, _ := setupTestService(t)
	st.Favorites[alice.UserID] = []int64{2, 77, 1}

	favs := svc.Favorites(alice)
	require.Len(t, favs, 2)
	assert.Equal(t, int64(2), favs[0].ID)
	assert.Equal(t, int64(1), favs[1].ID)

	assert.Empty(t, svc.Favorites(bob))
}

func TestSavePersonalRoute(t *testing.T) {
	svc, st, mem, _ := setupTestService(t)
	ctx := context.Background()
	wps := []store.Waypoint{{Lat: 55.75, Lng: 37.61}, {Lat: 55.76, Lng: 37.62}}

	route, err := svc.SavePersonalRoute(ctx, alice, "Morning walk", wps)
	require.NoError(t, err)
	assert.Equal(t, "Morning walk", route.Name)
	assert.Equal(t, wps, route.Waypoints)
	assert.Contains(t, route.ID, "route_")

	unnamed, err := svc.SavePersonalRoute(ctx, alice, "  ", wps[:1])
	require.NoError(t, err)
	assert.Equal(t, "Route 2024-05-01 12:30:00", unnamed.Name)

	assert.Len(t, svc.PersonalRoutes(alice), 2)
	assert.Empty(t, svc.PersonalRoutes(bob))
	assert.Empty(t, st.PersonalRoutes[bob.UserID])

	var stored store.PersonalRoutes
	_, err = mem.Load(ctx, store.KeyPersonalRoutes, &stored)
	require.NoError(t, err)
	assert.Len(t, stored[alice.UserID], 2)
}

func TestSavePersonalRoute_Validation(t *testing.T) {
	svc, st, _, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.SavePersonalRoute(ctx, guest, "x", []store.Waypoint{{Lat: 1, Lng: 1}})
	assert.ErrorIs(t, err, auth.ErrPermissionDenied)

	_, err = svc.SavePersonalRoute(ctx, alice, "empty", nil)
	assert.ErrorIs(t, err, appstate.ErrValidation)

	_, err = svc.SavePersonalRoute(ctx, alice, "empty", []store.Waypoint{})
	assert.ErrorIs(t, err, appstate.ErrValidation)

	_, err = svc.SavePersonalRoute(ctx, alice, "bad", []store.Waypoint{{Lat: 100, Lng: 0}})
	assert.ErrorIs(t, err, appstate.ErrValidation)

	assert.Empty(t, st.PersonalRoutes)
}

func TestDeletePersonalRoute(t *testing.T) {
	svc, _, _, _ := setupTestService(t)
	ctx := context.Background()

	route, err := svc.SavePersonalRoute(ctx, alice, "r", []store.Waypoint{{Lat: 1, Lng: 1}})
	require.NoError(t, err)

	// Another user cannot delete it: it is not in their list
	assert.ErrorIs(t, svc.DeletePersonalRoute(ctx, bob, route.ID), store.ErrNotFound)
	assert.ErrorIs(t, svc.DeletePersonalRoute(ctx, guest, route.ID), auth.ErrPermissionDenied)
	assert.Len(t, svc.PersonalRoutes(alice), 1)

	require.NoError(t, svc.DeletePersonalRoute(ctx, alice, route.ID))
	assert.Empty(t, svc.PersonalRoutes(alice))
	assert.ErrorIs(t, svc.DeletePersonalRoute(ctx, alice, route.ID), store.ErrNotFound)
}

func TestLoadRoute(t *testing.T) {
	svc, _, _, r := setupTestService(t)
	wps := []store.Waypoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}

	route, err := svc.SavePersonalRoute(context.Background(), alice, "r", wps)
	require.NoError(t, err)

	loaded, err := svc.LoadRoute(alice, route.ID)
	require.NoError(t, err)
	assert.Equal(t, wps, loaded.Waypoints)
	assert.Equal(t, wps, r.Route())

	_, err = svc.LoadRoute(bob, route.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreFailure(t *testing.T) {
	svc, st, mem, _ := setupTestService(t)
	mem.FailSave = errors.New("disk full")

	added, err := svc.ToggleFavorite(context.Background(), alice, 1)
	assert.ErrorIs(t, err, store.ErrStore)
	assert.True(t, added)
	assert.Equal(t, []int64{1}, st.Favorites[alice.UserID], "memory keeps the change")
}
