// ABOUTME: Unit tests for Actor capability and ownership helpers
// ABOUTME: Ownership holds only for owner-role actors with a matching id

package auth

import "testing"

func TestActor_Owns(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		ownerID string
		want    bool
	}{
		{
			name:    "owner with matching id",
			actor:   Actor{UserID: "user_1", Role: RoleOwner},
			ownerID: "user_1",
			want:    true,
		},
		{
			name:    "owner with different id",
			actor:   Actor{UserID: "user_1", Role: RoleOwner},
			ownerID: "user_2",
			want:    false,
		},
		{
			name:    "location without owner",
			actor:   Actor{UserID: "user_1", Role: RoleOwner},
			ownerID: "",
			want:    false,
		},
		{
			name:    "admin with matching id is not an owner",
			actor:   Actor{UserID: "user_1", Role: RoleAdmin},
			ownerID: "user_1",
			want:    false,
		},
		{
			name:    "user with matching id is not an owner",
			actor:   Actor{UserID: "user_1", Role: RoleUser},
			ownerID: "user_1",
			want:    false,
		},
		{
			name:    "empty actor id never matches",
			actor:   Actor{Role: RoleOwner},
			ownerID: "",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.Owns(tt.ownerID); got != tt.want {
				t.Errorf("Owns(%q) = %v, want %v", tt.ownerID, got, tt.want)
			}
		})
	}
}

func TestActor_CanOrOwns(t *testing.T) {
	moderator := Actor{UserID: "m", Role: RoleModerator}
	if !moderator.CanOrOwns(CanModerate, "") {
		t.Error("moderator should pass on capability alone")
	}

	owner := Actor{UserID: "o", Role: RoleOwner}
	if owner.CanOrOwns(CanModerate, "someone-else") {
		t.Error("owner without ownership must not moderate")
	}
	if !owner.CanOrOwns(CanModerate, "o") {
		t.Error("owner of the location should pass")
	}

	// canEditLocation is granted to the owner role but stays scoped to
	// owned locations
	if owner.CanOrOwns(CanEditLocation, "someone-else") {
		t.Error("owner must not edit a location owned by someone else")
	}
	if owner.CanOrOwns(CanEditLocation, "") {
		t.Error("owner must not edit an unowned location")
	}
	if !owner.CanOrOwns(CanEditLocation, "o") {
		t.Error("owner should edit an owned location")
	}

	user := Actor{UserID: "o", Role: RoleUser}
	if user.CanOrOwns(CanEditLocation, "o") {
		t.Error("matching id without the owner role grants nothing")
	}
}

func TestActor_IsAnonymous(t *testing.T) {
	if !(Actor{Role: RoleGuest}).IsAnonymous() {
		t.Error("guest should be anonymous")
	}
	if (Actor{Role: RoleUser}).IsAnonymous() {
		t.Error("user should not be anonymous")
	}
}
