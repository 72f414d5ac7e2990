// ABOUTME: Domain entities persisted as JSON collections
// ABOUTME: Location, Review, User, PersonalRoute and Waypoint records

package store

// LocationStatus is open or closed
type LocationStatus string

const (
	StatusOpen   LocationStatus = "open"
	StatusClosed LocationStatus = "closed"
)

// Valid reports whether s is a known status.
func (s LocationStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// Location is a point of interest shown on the map
type Location struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Lat      float64        `json:"lat"`
	Lng      float64        `json:"lng"`
	Address  string         `json:"address"`
	Hours    string         `json:"hours"`
	Status   LocationStatus `json:"status"`
	Desc     string         `json:"desc"`
	OwnerID  string         `json:"ownerId,omitempty"` // empty = no owner
	Photos   []string       `json:"photos"`
	Reviews  []Review       `json:"reviews"`
}

// Review belongs to exactly one Location. Order in Location.Reviews is
// chronological.
type Review struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

// User is a registered identity
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Blocked bool   `json:"blocked"`
}

// Waypoint is a coordinate pair
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PersonalRoute is a named, ordered list of waypoints owned by one user
type PersonalRoute struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Waypoints []Waypoint `json:"waypoints"`
}

// Favorites maps user id to location ids in insertion order.
type Favorites map[string][]int64

// PersonalRoutes maps user id to that user's saved routes.
type PersonalRoutes map[string][]PersonalRoute

// ReviewIndex returns the position of the review with id, or -1.
func (l *Location) ReviewIndex(id string) int {
	for i := range l.Reviews {
		if l.Reviews[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can't mutate stored state.
func (l *Location) Clone() *Location {
	c := *l
	c.Photos = append([]string(nil), l.Photos...)
	c.Reviews = append([]Review(nil), l.Reviews...)
	if c.Photos == nil {
		c.Photos = []string{}
	}
	if c.Reviews == nil {
		c.Reviews = []Review{}
	}
	return &c
}
