package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"daladala/internal/cache"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
	"daladala/internal/repositories"

	"github.com/stretchr/testify/require"
)

const testDate = "2026-10-19"

var (
	rider      = domain.RequestContext{UserID: 100, Role: domain.RoleRider, RequestID: "test"}
	otherRider = domain.RequestContext{UserID: 200, Role: domain.RoleRider, RequestID: "test"}
	driver     = domain.RequestContext{UserID: 7, Role: domain.RoleDriver, RequestID: "test"}
	admin      = domain.RequestContext{UserID: 1, Role: domain.RoleAdmin, RequestID: "test"}
)

type fixture struct {
	store *repositories.MemoryStore
	cache *cache.MemoryAvailabilityCache
	trip  models.Trip
	seats []models.Seat
	now   time.Time
}

func newFixture(t *testing.T, seatCount int) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	numbers := make([]string, 0, seatCount)
	for i := 1; i <= seatCount; i++ {
		numbers = append(numbers, strconv.Itoa(i))
	}
	v, seats := store.AddVehicle("T 100 ABC", numbers...)
	trip := store.AddTrip(models.Trip{VehicleID: v.ID, RouteID: 3, DriverID: driver.UserID, DepartureDate: testDate, DepartureTime: "06:30:00"})
	return &fixture{
		store: store,
		cache: cache.NewMemoryAvailabilityCache(time.Minute),
		trip:  trip,
		seats: seats,
		now:   time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) availability() AvailabilityService {
	return AvailabilityService{Store: f.store, Cache: f.cache, RequestID: "test"}
}

func (f *fixture) reservations() ReservationService {
	return ReservationService{Store: f.store, Cache: f.cache, Clock: f.clock, RequestID: "test"}
}

func (f *fixture) boarding() BoardingService {
	return BoardingService{Store: f.store, Cache: f.cache, Clock: f.clock, RequestID: "test"}
}

func (f *fixture) bookings() BookingService {
	return BookingService{Store: f.store, Cache: f.cache, Clock: f.clock, RequestID: "test"}
}

// newBooking creates a pending booking without seats.
func (f *fixture) newBooking(t *testing.T, caller domain.RequestContext, pickup, dropoff domain.StopID, count int) models.Booking {
	t.Helper()
	d, err := f.bookings().CreateBooking(context.Background(), caller, CreateBookingInput{
		TripID:         f.trip.ID,
		PickupStopID:   pickup,
		DropoffStopID:  dropoff,
		PassengerCount: count,
	})
	require.NoError(t, err)
	require.Equal(t, models.BookingPending, d.Status)
	return d.Booking
}

func (f *fixture) reserve(caller domain.RequestContext, bookingID int64, seats ...string) (models.ReservationResult, error) {
	return f.reservations().ReserveSeats(context.Background(), caller, ReserveInput{BookingID: bookingID, SeatNumbers: seats})
}

func (f *fixture) stats(t *testing.T) models.TripSeatStats {
	t.Helper()
	stats, err := f.availability().GetTripSeatStats(context.Background(), f.trip.ID, testDate)
	require.NoError(t, err)
	return stats
}

func requireKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "error: %v", err)
}
