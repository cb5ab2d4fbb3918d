package models

import (
	"time"

	"daladala/internal/domain"
	"daladala/internal/seating"
)

// SeatAssignment binds one seat to one booking for one trip and travel
// date. Released assignments keep their row with IsOccupied=false.
type SeatAssignment struct {
	ID            int64         `json:"id"`
	SeatID        int64         `json:"seat_id"`
	SeatNumber    string        `json:"seat_number"`
	BookingID     int64         `json:"booking_id"`
	TripID        int64         `json:"trip_id"`
	TravelDate    string        `json:"travel_date"`
	PickupStopID  domain.StopID `json:"pickup_stop_id"`
	DropoffStopID domain.StopID `json:"dropoff_stop_id"`
	PassengerName string        `json:"passenger_name"`
	IsOccupied    bool          `json:"is_occupied"`
	BoardedAt     *time.Time    `json:"boarded_at,omitempty"`
	AlightedAt    *time.Time    `json:"alighted_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (a SeatAssignment) Segment() seating.Segment {
	return seating.Segment{Pickup: a.PickupStopID, Dropoff: a.DropoffStopID}
}

// SeatOccupant describes who holds an occupied seat and for which segment.
type SeatOccupant struct {
	AssignmentID  int64         `json:"assignment_id"`
	BookingID     int64         `json:"booking_id"`
	PassengerName string        `json:"passenger_name"`
	PickupStopID  domain.StopID `json:"pickup_stop_id"`
	DropoffStopID domain.StopID `json:"dropoff_stop_id"`
	BoardedAt     *time.Time    `json:"boarded_at,omitempty"`
}

type OccupiedSeat struct {
	SeatInfo
	Occupants []SeatOccupant `json:"occupants"`
}

// SeatAvailability is the availability snapshot for a trip, travel date
// and optional segment. Available, Occupied and OutOfService partition
// the vehicle's seats.
type SeatAvailability struct {
	TripID       int64            `json:"trip_id"`
	TravelDate   string           `json:"travel_date"`
	Segment      *seating.Segment `json:"segment,omitempty"`
	TotalSeats   int              `json:"total_seats"`
	Available    []SeatInfo       `json:"available"`
	Occupied     []OccupiedSeat   `json:"occupied"`
	OutOfService []SeatInfo       `json:"out_of_service"`
}

// AvailableNumbers returns the free seat numbers in snapshot order.
func (a SeatAvailability) AvailableNumbers() []string {
	out := make([]string, 0, len(a.Available))
	for _, s := range a.Available {
		out = append(out, s.SeatNumber)
	}
	return out
}

type TripSeatStats struct {
	TripID        int64   `json:"trip_id"`
	TravelDate    string  `json:"travel_date"`
	TotalSeats    int     `json:"total_seats"`
	Available     int     `json:"available"`
	Occupied      int     `json:"occupied"`
	OutOfService  int     `json:"out_of_service"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type ReservedSeat struct {
	AssignmentID  int64  `json:"assignment_id"`
	SeatID        int64  `json:"seat_id"`
	SeatNumber    string `json:"seat_number"`
	PassengerName string `json:"passenger_name"`
}

type ReservationResult struct {
	BookingID     int64          `json:"booking_id"`
	TripID        int64          `json:"trip_id"`
	TravelDate    string         `json:"travel_date"`
	ReservedSeats []ReservedSeat `json:"reserved_seats"`
}

// SeatNumbers lists the committed seat numbers in reservation order.
func (r ReservationResult) SeatNumbers() []string {
	out := make([]string, 0, len(r.ReservedSeats))
	for _, s := range r.ReservedSeats {
		out = append(out, s.SeatNumber)
	}
	return out
}

type TripCompletion struct {
	TripID            int64  `json:"trip_id"`
	TravelDate        string `json:"travel_date"`
	ReleasedSeats     int    `json:"released_seats"`
	CompletedBookings int    `json:"completed_bookings"`
	CancelledBookings int    `json:"cancelled_bookings"`
}
