package models

import (
	"time"

	"daladala/internal/domain"
	"daladala/internal/seating"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCompleted, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

// CanTransition reports whether the lifecycle allows s -> to.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// AcceptsReservation reports whether seats may still be attached.
func (s BookingStatus) AcceptsReservation() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking is a passenger purchase intent for one segment of a trip.
// SeatNumbers is a human readable summary rewritten on every reserve
// and release; the assignments are the source of truth.
type Booking struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	TripID         int64         `json:"trip_id"`
	PickupStopID   domain.StopID `json:"pickup_stop_id"`
	DropoffStopID  domain.StopID `json:"dropoff_stop_id"`
	PassengerCount int           `json:"passenger_count"`
	TravelDate     string        `json:"travel_date"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  string        `json:"payment_status"`
	TotalAmount    int64         `json:"total_amount"`
	SeatNumbers    string        `json:"seat_numbers"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (b Booking) Segment() seating.Segment {
	return seating.Segment{Pickup: b.PickupStopID, Dropoff: b.DropoffStopID}
}

// BookingDetail is a booking with its seat assignments.
type BookingDetail struct {
	Booking
	Assignments []SeatAssignment `json:"assignments"`
}
