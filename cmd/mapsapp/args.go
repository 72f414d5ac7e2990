// ABOUTME: Command-line tokenizing for the interactive loop
// ABOUTME: Splits on spaces with double-quote grouping and parses key=value options

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/mapsapp/internal/store"
)

// splitArgs splits line on whitespace. Double quotes group words and are
// removed; an unterminated quote runs to the end of the line.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}

// parseOptions splits key=value arguments. Keys are lowercased.
func parseOptions(args []string) (map[string]string, error) {
	opts := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		opts[strings.ToLower(k)] = v
	}
	return opts, nil
}

// parseWaypoint parses "lat,lng".
func parseWaypoint(s string) (store.Waypoint, error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return store.Waypoint{}, fmt.Errorf("expected lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return store.Waypoint{}, fmt.Errorf("bad latitude %q", latStr)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return store.Waypoint{}, fmt.Errorf("bad longitude %q", lngStr)
	}
	return store.Waypoint{Lat: lat, Lng: lng}, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad location id %q", s)
	}
	return id, nil
}
