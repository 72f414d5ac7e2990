package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath, "")
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// backends returns each Store implementation under test.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"sqlite": setupTestStore(t),
		"memory": NewMemoryStore(""),
	}
}

func sampleLocations() []Location {
	return []Location{
		{
			ID:       1,
			Name:     "Cafe Cappuccino",
			Category: "Cafe",
			Lat:      55.7558,
			Lng:      37.6176,
			Address:  "1 Sample St",
			Hours:    "08:00-22:00",
			Status:   StatusOpen,
			Desc:     "Cozy place",
			OwnerID:  "user_owner",
			Photos:   []string{},
			Reviews:  []Review{{ID: "101", Author: "Ivan", Rating: 5, Text: "Great!"}},
		},
		{
			ID:       2,
			Name:     "Sunny Park",
			Category: "Park",
			Lat:      55.76,
			Lng:      37.62,
			Status:   StatusClosed,
			Photos:   []string{},
			Reviews:  []Review{},
		},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			locs := sampleLocations()
			require.NoError(t, s.Save(ctx, KeyLocations, locs))
			var gotLocs []Location
			found, err := s.Load(ctx, KeyLocations, &gotLocs)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, locs, gotLocs)

			users := []User{
				{ID: "u_guest", Name: "Guest", Role: "guest"},
				{ID: "user_1", Name: "Ivan", Role: "admin", Blocked: true},
			}
			require.NoError(t, s.Save(ctx, KeyUsers, users))
			var gotUsers []User
			_, err = s.Load(ctx, KeyUsers, &gotUsers)
			require.NoError(t, err)
			assert.Equal(t, users, gotUsers)

			favs := Favorites{"user_1": {2, 1}, "user_2": {}}
			require.NoError(t, s.Save(ctx, KeyFavorites, favs))
			var gotFavs Favorites
			_, err = s.Load(ctx, KeyFavorites, &gotFavs)
			require.NoError(t, err)
			assert.Equal(t, favs, gotFavs)

			routes := PersonalRoutes{"user_1": {{ID: "route_1", Name: "Home", Waypoints: []Waypoint{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}}}}
			require.NoError(t, s.Save(ctx, KeyPersonalRoutes, routes))
			var gotRoutes PersonalRoutes
			_, err = s.Load(ctx, KeyPersonalRoutes, &gotRoutes)
			require.NoError(t, err)
			assert.Equal(t, routes, gotRoutes)
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, KeyBlockedUsers, []string{"a"}))
			require.NoError(t, s.Save(ctx, KeyBlockedUsers, []string{"b", "c"}))

			var got []string
			_, err := s.Load(ctx, KeyBlockedUsers, &got)
			require.NoError(t, err)
			assert.Equal(t, []string{"b", "c"}, got)
		})
	}
}

func TestStore_LoadMissing(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got := []string{"untouched"}
			found, err := s.Load(ctx, KeyBlockedUsers, &got)
			require.NoError(t, err)
			assert.False(t, found)
			assert.Equal(t, []string{"untouched"}, got)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save(ctx, KeyUsers, []User{{ID: "x"}}))
			require.NoError(t, s.Delete(ctx, KeyUsers))
			require.NoError(t, s.Delete(ctx, KeyUsers), "deleting twice is fine")

			var got []User
			found, err := s.Load(ctx, KeyUsers, &got)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestLoadOr(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")

	var blocked []string
	require.NoError(t, LoadOr(ctx, s, KeyBlockedUsers, &blocked, []string{}))
	assert.Equal(t, []string{}, blocked)

	require.NoError(t, s.Save(ctx, KeyBlockedUsers, []string{"user_9"}))
	require.NoError(t, LoadOr(ctx, s, KeyBlockedUsers, &blocked, []string{}))
	assert.Equal(t, []string{"user_9"}, blocked)
}

func TestStore_MalformedValue(t *testing.T) {
	ctx := context.Background()

	sq := setupTestStore(t)
	require.NoError(t, sq.saveRaw(ctx, KeyLocations, "{not json"))

	mem := NewMemoryStore("")
	mem.SetRaw(KeyLocations, "{not json")

	for name, s := range map[string]Store{"sqlite": sq, "memory": mem} {
		t.Run(name, func(t *testing.T) {
			var locs []Location
			_, err := s.Load(ctx, KeyLocations, &locs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrStore))
		})
	}
}

func TestStore_UnencodableValue(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Save(ctx, KeyLocations, []Location{{ID: 1, Lat: math.NaN()}})
			assert.ErrorIs(t, err, ErrStore)
		})
	}
}

func TestStore_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")

	a, err := NewSQLiteStore(path, "a_")
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, KeyUsers, []User{{ID: "from-a"}}))
	require.NoError(t, a.Close())

	b, err := NewSQLiteStore(path, "b_")
	require.NoError(t, err)
	defer b.Close()

	var users []User
	found, err := b.Load(ctx, KeyUsers, &users)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "maps.db")

	s, err := NewSQLiteStore(path, "")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, KeyLocations, sampleLocations()))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path, "")
	require.NoError(t, err)
	defer reopened.Close()

	var locs []Location
	found, err := reopened.Load(ctx, KeyLocations, &locs)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleLocations(), locs)
}

func TestMemoryStore_FailSave(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("")
	s.FailSave = errors.New("quota exceeded")

	err := s.Save(ctx, KeyUsers, []User{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStore)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, ok := s.Raw(KeyUsers)
	assert.False(t, ok)
}

func TestLocation_Clone(t *testing.T) {
	loc := sampleLocations()[0]
	c := loc.Clone()
	c.Reviews[0].Text = "changed"
	c.Name = "changed"

	assert.Equal(t, "Great!", loc.Reviews[0].Text)
	assert.Equal(t, "Cafe Cappuccino", loc.Name)
	assert.Equal(t, 0, loc.ReviewIndex("101"))
	assert.Equal(t, -1, loc.ReviewIndex("nope"))
}
