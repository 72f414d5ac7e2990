// Package session tracks who is acting.
//
// A Manager moves between three states:
//
//	Anonymous --Login--> Authenticating --ok--> Active --Logout--> Anonymous
//	                                    --blocked/role mismatch--> Anonymous
//
// There is no token, refresh or expiry. The current actor is passed
// explicitly into every service call by the controller that owns the
// Manager.
package session
