// Package store provides persistent storage for mapsapp.
//
// # Architecture
//
// The store is a flat key-to-JSON mirror of the application's in-memory
// collections. Every write replaces the whole value under a key; there is no
// partial update, no versioning and no transaction spanning keys.
//
//   - Store: Save / Load / Delete of JSON values by key
//   - AuditStore: append-only log of privileged actions
//
// SQLiteStore and MemoryStore implement both interfaces.
//
// # Keys
//
// Collections are stored under five keys, each prefixed with mapsapp_v1_:
//
//   - locations: []Location (reviews embedded)
//   - users: []User
//   - favorites: map of user id to location ids
//   - personalRoutes: map of user id to routes
//   - blockedUsers: []string
//
// # Loading
//
// LoadOr implements load-with-fallback semantics:
//
//	var locs []store.Location
//	err := store.LoadOr(ctx, s, store.KeyLocations, &locs, defaults)
//
// # Error Handling
//
//   - ErrNotFound: Requested entity does not exist (used by the services)
//   - ErrStore: encoding, decoding or write failure, including a malformed
//     stored value
//
// # Testing
//
// Use NewMemoryStore("") for unit tests. Set FailSave to simulate write
// failures. Use NewSQLiteStore(path, "") with t.TempDir() for integration
// tests with real SQLite.
package store
