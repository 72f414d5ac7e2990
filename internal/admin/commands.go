// ABOUTME: Admin command-line parser for the user management panel
// ABOUTME: Accepts "block <id>", "unblock <id>" and "setrole <id> <role>"

package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389/mapsapp/internal/appstate"
	"github.com/2389/mapsapp/internal/auth"
)

// ExecCommand parses and runs one admin command line. It returns a short
// confirmation message on success.
func (s *UserService) ExecCommand(ctx context.Context, actor auth.Actor, line string) (string, error) {
	if err := actor.Require(auth.CanManageUsers); err != nil {
		return "", err
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", appstate.Invalid("empty command")
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "block", "unblock":
		if len(fields) != 2 {
			return "", appstate.Invalid("usage: %s <userId>", cmd)
		}
		if cmd == "block" {
			if err := s.BlockUser(ctx, actor, fields[1]); err != nil {
				return "", err
			}
			return fmt.Sprintf("blocked %s", fields[1]), nil
		}
		if err := s.UnblockUser(ctx, actor, fields[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("unblocked %s", fields[1]), nil

	case "setrole":
		if len(fields) != 3 {
			return "", appstate.Invalid("usage: setrole <userId> <role>")
		}
		if err := s.SetRole(ctx, actor, fields[1], fields[2]); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s is now %s", fields[1], fields[2]), nil

	default:
		return "", appstate.Invalid("unknown command %q", fields[0])
	}
}
