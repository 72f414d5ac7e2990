// ABOUTME: Role and capability definitions with the static role-to-capability table
// ABOUTME: CapabilitiesFor and Authorize are the only permission lookups in the app

package auth

import "fmt"

// Role is a named bundle of capabilities assigned to a user.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleUser      Role = "user"
	RoleOwner     Role = "owner"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRoles lists every role in the order offered by the login surface.
var ValidRoles = []Role{
	RoleGuest,
	RoleUser,
	RoleOwner,
	RoleModerator,
	RoleAdmin,
}

// Capability is a single named permission.
type Capability string

const (
	CanView         Capability = "canView"
	CanFav          Capability = "canFav"
	CanReview       Capability = "canReview"
	CanSaveRoutes   Capability = "canSaveRoutes"
	CanEditLocation Capability = "canEditLocation"
	CanAddLocation  Capability = "canAddLocation"
	CanModerate     Capability = "canModerate"
	CanManageUsers  Capability = "canManageUsers"
)

// AllCapabilities lists every capability known to the permission table.
var AllCapabilities = []Capability{
	CanView,
	CanFav,
	CanReview,
	CanSaveRoutes,
	CanEditLocation,
	CanAddLocation,
	CanModerate,
	CanManageUsers,
}

// CapabilitySet maps each capability to whether it is granted.
type CapabilitySet map[Capability]bool

// permissions is the role-to-capability table. Every cell is spelled out:
// roles do not inherit from each other and the table is not monotonic.
var permissions = map[Role]CapabilitySet{
	RoleGuest: {
		CanView:         true,
		CanFav:          false,
		CanReview:       false,
		CanSaveRoutes:   false,
		CanEditLocation: false,
		CanAddLocation:  false,
		CanModerate:     false,
		CanManageUsers:  false,
	},
	RoleUser: {
		CanView:         true,
		CanFav:          true,
		CanReview:       true,
		CanSaveRoutes:   true,
		CanEditLocation: false,
		CanAddLocation:  false,
		CanModerate:     false,
		CanManageUsers:  false,
	},
	RoleOwner: {
		CanView:         true,
		CanFav:          true,
		CanReview:       true,
		CanSaveRoutes:   true,
		CanEditLocation: true,
		CanAddLocation:  false,
		CanModerate:     false,
		CanManageUsers:  false,
	},
	RoleModerator: {
		CanView:         true,
		CanFav:          true,
		CanReview:       true,
		CanSaveRoutes:   true,
		CanEditLocation: true,
		CanAddLocation:  true,
		CanModerate:     true,
		CanManageUsers:  false,
	},
	RoleAdmin: {
		CanView:         true,
		CanFav:          true,
		CanReview:       true,
		CanSaveRoutes:   true,
		CanEditLocation: true,
		CanAddLocation:  true,
		CanModerate:     true,
		CanManageUsers:  true,
	},
}

// IsValid reports whether r is one of the five known roles.
func (r Role) IsValid() bool {
	_, ok := permissions[r]
	return ok
}

// ParseRole converts user input into a Role. Unknown strings return a
// *ConfigurationError.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", &ConfigurationError{Role: s}
	}
	return r, nil
}

// CapabilitiesFor returns a copy of the capability set for role. An
// unrecognized role is a programming error and yields *ConfigurationError.
func CapabilitiesFor(role Role) (CapabilitySet, error) {
	set, ok := permissions[role]
	if !ok {
		return nil, &ConfigurationError{Role: string(role)}
	}

	out := make(CapabilitySet, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out, nil
}

// Authorize reports whether role holds capability. Unknown roles and unknown
// capability keys are denied.
func Authorize(role Role, capability Capability) bool {
	set, ok := permissions[role]
	if !ok {
		return false
	}
	return set[capability]
}

// Require returns nil when role holds capability, or an error wrapping
// ErrPermissionDenied that names the missing capability.
func Require(role Role, capability Capability) error {
	if Authorize(role, capability) {
		return nil
	}
	return fmt.Errorf("%w: role %q lacks %s", ErrPermissionDenied, role, capability)
}
