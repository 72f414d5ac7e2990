// ABOUTME: Store interface for the flat key-to-JSON persistence layer
// ABOUTME: Defines the collection keys, sentinel errors and the LoadOr helper

package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrStore wraps serialization and persistence failures
var ErrStore = errors.New("store error")

// DefaultPrefix namespaces every key written by the app.
const DefaultPrefix = "mapsapp_v1_"

// Collection keys mirrored to the store.
const (
	KeyLocations      = "locations"
	KeyUsers          = "users"
	KeyFavorites      = "favorites"
	KeyPersonalRoutes = "personalRoutes"
	KeyBlockedUsers   = "blockedUsers"
)

// Keys lists every collection key.
var Keys = []string{
	KeyLocations,
	KeyUsers,
	KeyFavorites,
	KeyPersonalRoutes,
	KeyBlockedUsers,
}

// Store persists whole values under string keys as JSON text.
type Store interface {
	// Save serializes value and stores it under key, replacing any prior value.
	Save(ctx context.Context, key string, value any) error

	// Load deserializes the value stored under key into out. found is false
	// and out is left untouched when the key is absent.
	Load(ctx context.Context, key string, out any) (found bool, err error)

	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}

// LoadOr loads key into out, or copies fallback into out when the key is
// absent. Malformed stored values are returned as errors.
func LoadOr[T any](ctx context.Context, s Store, key string, out *T, fallback T) error {
	found, err := s.Load(ctx, key, out)
	if err != nil {
		return err
	}
	if !found {
		*out = fallback
	}
	return nil
}

func storeErr(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrStore, op, key, err)
}
