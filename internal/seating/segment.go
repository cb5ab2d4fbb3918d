// Package seating holds the pure parts of the seat engine: the segment
// overlap rule and the automatic seat selector.
package seating

import "daladala/internal/domain"

// Segment is the pickup -> dropoff portion of a trip a passenger travels.
type Segment struct {
	Pickup  domain.StopID `json:"pickup_stop_id"`
	Dropoff domain.StopID `json:"dropoff_stop_id"`
}

// IsZero reports whether no stop is known for the segment.
func (s Segment) IsZero() bool {
	return s.Pickup == 0 && s.Dropoff == 0
}

// Valid reports whether both stops are set and distinct.
func (s Segment) Valid() bool {
	return s.Pickup > 0 && s.Dropoff > 0 && s.Pickup != s.Dropoff
}

// Overlaps applies the endpoint-match rule: two segments conflict when
// either endpoint of one equals either endpoint of the other. A segment
// with no known stops conflicts with everything.
func Overlaps(a, b Segment) bool {
	if a.IsZero() || b.IsZero() {
		return true
	}
	return a.Pickup == b.Pickup ||
		a.Pickup == b.Dropoff ||
		a.Dropoff == b.Pickup ||
		a.Dropoff == b.Dropoff
}
