// Package auth provides the role-permission model for mapsapp.
//
// # Roles and Capabilities
//
// A closed set of five roles maps onto eight boolean capabilities through a
// static table:
//
//	role       View Fav Review SaveRoutes EditLoc AddLoc Moderate ManageUsers
//	guest       x
//	user        x    x    x       x
//	owner       x    x    x       x          x
//	moderator   x    x    x       x          x       x      x
//	admin       x    x    x       x          x       x      x        x
//
// The table is not derived from a role hierarchy. Each cell is written out so
// a change to one role never leaks into another.
//
// # Checks
//
//	auth.Authorize(role, auth.CanReview)  // pure lookup, fail-closed
//	actor.Require(auth.CanFav)            // wrapped ErrPermissionDenied
//	actor.CanOrOwns(auth.CanEditLocation, loc.OwnerID)
//
// The ownership predicate is true only for owner-role actors whose id equals
// the location's owner id. Location-scoped checks apply it instead of the
// table for the owner role, so an owner edits only its own locations.
//
// # Errors
//
//   - ErrPermissionDenied: missing capability or failed ownership check
//   - ErrBlockedUser: login for a blocked user id
//   - *ConfigurationError: role string outside the closed set
package auth
