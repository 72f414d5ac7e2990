// ABOUTME: Authorization error values shared by every mutating service
// ABOUTME: Callers match them with errors.Is / errors.As

package auth

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned when the actor lacks the required capability
// or fails the ownership predicate.
var ErrPermissionDenied = errors.New("permission denied")

// ErrBlockedUser is returned by login when the resolved user id is blocked.
var ErrBlockedUser = errors.New("user is blocked")

// ConfigurationError reports a role string outside the closed role set.
type ConfigurationError struct {
	Role string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown role %q", e.Role)
}
