// ABOUTME: Actor identity passed explicitly into every mutating operation
// ABOUTME: Wraps capability checks and the location ownership predicate

package auth

// Actor holds the identity on whose behalf an operation is attempted.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}

// Can returns true if the actor's role grants capability.
func (a Actor) Can(capability Capability) bool {
	return Authorize(a.Role, capability)
}

// Require returns a permission error unless the actor holds capability.
func (a Actor) Require(capability Capability) error {
	return Require(a.Role, capability)
}

// Owns reports whether the actor satisfies the ownership predicate for a
// location owned by ownerID. Only owner-role actors own locations, and an
// empty ownerID is owned by nobody.
func (a Actor) Owns(ownerID string) bool {
	if a.Role != RoleOwner {
		return false
	}
	if ownerID == "" || a.UserID == "" {
		return false
	}
	return ownerID == a.UserID
}

// CanOrOwns gates location-scoped operations. Owner-role actors are limited
// to the locations they own, even for capabilities their role grants;
// every other role is decided by the capability alone.
func (a Actor) CanOrOwns(capability Capability, ownerID string) bool {
	if a.Role == RoleOwner {
		return a.Owns(ownerID)
	}
	return a.Can(capability)
}

// IsAnonymous is true for guests.
func (a Actor) IsAnonymous() bool {
	return a.Role == RoleGuest
}
