// ABOUTME: Demo data seeded into an empty store on first load
// ABOUTME: Two sample locations and the shared guest profile

package appstate

import "github.com/2389/mapsapp/internal/store"

// GuestProfileID is the seeded registry entry for the guest profile.
const GuestProfileID = "u_guest"

// DemoLocations returns the sample locations used when the store is empty.
func DemoLocations() []store.Location {
	return []store.Location{
		{
			ID:       1,
			Name:     "Cafe Cappuccino",
			Category: "Cafe",
			Lat:      55.7558,
			Lng:      37.6176,
			Address:  "1 Sample St",
			Hours:    "08:00-22:00",
			Status:   store.StatusOpen,
			Desc:     "A cozy little place",
			Photos:   []string{},
			Reviews: []store.Review{
				{ID: "101", Author: "Ivan", Rating: 5, Text: "Excellent!"},
			},
		},
		{
			ID:       2,
			Name:     "Sunny Park",
			Category: "Park",
			Lat:      55.76,
			Lng:      37.62,
			Address:  "Park Ave",
			Hours:    "24/7",
			Status:   store.StatusOpen,
			Desc:     "A green spot",
			Photos:   []string{},
			Reviews:  []store.Review{},
		},
	}
}

// DemoUsers returns the seeded user registry.
func DemoUsers() []store.User {
	return []store.User{
		{ID: GuestProfileID, Name: "Guest", Role: "guest", Blocked: false},
	}
}
