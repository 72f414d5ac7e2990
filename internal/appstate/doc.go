// Package appstate holds the application's in-memory collections.
//
// State replaces module-level globals: one value owns locations, users,
// favorites, personal routes and the blocked list, and the Store is its only
// side-effecting dependency. Services in places, personal, admin and session
// mutate State and then call the matching Save method, which writes the whole
// collection under its key.
//
// A Save failure leaves memory ahead of the store. The divergence is logged
// at error level and the wrapped store.ErrStore is returned to the caller.
package appstate
