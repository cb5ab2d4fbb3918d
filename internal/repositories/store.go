package repositories

import (
	"context"
	"time"

	"daladala/internal/domain/models"
)

// TripStore reads the trip catalog. Trips are managed elsewhere; the
// only write is closing a completed run.
type TripStore interface {
	GetByID(ctx context.Context, id int64) (models.Trip, error)
	LockShared(ctx context.Context, id int64) (models.Trip, error)
	LockByID(ctx context.Context, id int64) (models.Trip, error)
	MarkCompleted(ctx context.Context, id int64) error
}

// SeatStore reads the per-vehicle seat catalog. The Lock variants take
// row locks for the rest of the enclosing transaction.
type SeatStore interface {
	ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error)
	LockByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error)
	LockByNumbers(ctx context.Context, vehicleID int64, numbers []string) ([]models.Seat, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	LockByID(ctx context.Context, id int64) (models.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status models.BookingStatus) error
	UpdateSeatNumbers(ctx context.Context, id int64, summary string) error
	CompleteByTrip(ctx context.Context, tripID int64, travelDate string) (int, error)
	CancelPendingByTrip(ctx context.Context, tripID int64, travelDate string) (int, error)
}

// AssignmentStore is the seat assignment ledger. Only the reservation
// and boarding services write to it.
type AssignmentStore interface {
	GetByID(ctx context.Context, id int64) (models.SeatAssignment, error)
	ListOccupied(ctx context.Context, tripID int64, travelDate string) ([]models.SeatAssignment, error)
	LockOccupiedBySeats(ctx context.Context, tripID int64, travelDate string, seatIDs []int64) ([]models.SeatAssignment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]models.SeatAssignment, error)
	Insert(ctx context.Context, a *models.SeatAssignment) (int64, error)
	MarkBoarded(ctx context.Context, id int64, at time.Time) (bool, error)
	MarkAlighted(ctx context.Context, id int64, at time.Time) (bool, error)
	ReleaseByBooking(ctx context.Context, bookingID int64, at time.Time) (int, error)
	ReleaseByTrip(ctx context.Context, tripID int64, travelDate string, at time.Time) (int, error)
}

// Repos groups the stores bound to one connection or transaction.
type Repos interface {
	Trips() TripStore
	Seats() SeatStore
	Bookings() BookingStore
	Assignments() AssignmentStore
}

// Store is the unit of work used by the services. WithinTx runs fn
// atomically: on error nothing fn wrote is observable.
type Store interface {
	Repos
	WithinTx(ctx context.Context, fn func(Repos) error) error
	Ping(ctx context.Context) error
}
