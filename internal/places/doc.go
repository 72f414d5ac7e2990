// Package places implements location and review mutations.
//
// # Operations
//
//   - AddLocation: canAddLocation
//   - EditLocation: canEditLocation, or an owner-role actor whose id equals
//     the location's ownerId; patches name, desc, hours and status only
//   - DeleteLocation: canModerate; cascades reviews and favorites
//   - AddReview: canReview; rating 1..5 and non-empty text
//   - DeleteReview: canModerate, or the owner of the parent location
//
// Each successful mutation persists the whole locations collection. When the
// store write fails the in-memory change stays in place and the error wraps
// store.ErrStore.
//
// # Errors
//
//   - auth.ErrPermissionDenied
//   - store.ErrNotFound: unknown location or review id
//   - appstate.ErrValidation: malformed input
package places
