// Package personal holds per-user favorites and saved routes.
//
// Favorites are keyed by the actor's user id and toggled: a second toggle of
// the same location removes it again. Routes are named, non-empty lists of
// waypoints. No role, admin included, can read or write another user's
// entries through this package.
package personal
