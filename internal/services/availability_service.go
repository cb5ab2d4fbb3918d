package services

import (
	"context"
	"fmt"

	"daladala/internal/cache"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
	"daladala/internal/repositories"
	"daladala/internal/seating"
	"daladala/internal/utils"
)

// AvailabilityService answers read-only seat questions. Its answers are
// advisory: reservations re-check under lock.
type AvailabilityService struct {
	Store     repositories.Store
	Cache     cache.AvailabilityCache
	RequestID string
}

type AvailabilityQuery struct {
	TripID        int64
	PickupStopID  domain.StopID
	DropoffStopID domain.StopID
	TravelDate    string
}

type AutoAssignQuery struct {
	TripID         int64
	PickupStopID   domain.StopID
	DropoffStopID  domain.StopID
	PassengerCount int
	TravelDate     string
}

// GetAvailableSeats lists free, occupied and out-of-service seats for a
// trip and travel date. With a segment, occupants on non-overlapping
// segments do not take the seat.
func (s AvailabilityService) GetAvailableSeats(ctx context.Context, q AvailabilityQuery) (models.SeatAvailability, error) {
	seg, err := optionalSegment(q.PickupStopID, q.DropoffStopID)
	if err != nil {
		return models.SeatAvailability{}, err
	}
	return s.snapshot(ctx, q.TripID, q.TravelDate, seg)
}

// GetTripSeatStats summarises the whole trip without a segment filter.
func (s AvailabilityService) GetTripSeatStats(ctx context.Context, tripID int64, travelDate string) (models.TripSeatStats, error) {
	snap, err := s.snapshot(ctx, tripID, travelDate, nil)
	if err != nil {
		return models.TripSeatStats{}, err
	}
	return statsFrom(snap), nil
}

// AutoAssignSeats suggests seats for a party without reserving them.
func (s AvailabilityService) AutoAssignSeats(ctx context.Context, q AutoAssignQuery) ([]string, error) {
	seg, err := requiredSegment(q.PickupStopID, q.DropoffStopID)
	if err != nil {
		return nil, err
	}
	if q.PassengerCount <= 0 {
		return nil, domain.ValidationError{Field: "passenger_count", Msg: "must be at least 1"}
	}
	snap, err := s.snapshot(ctx, q.TripID, q.TravelDate, &seg)
	if err != nil {
		return nil, err
	}
	picked, err := seating.Select(snap.AvailableNumbers(), q.PassengerCount)
	if err != nil {
		return nil, withTrip(err, q.TripID)
	}
	utils.LogEvent(s.RequestID, "seats", "auto_assign",
		fmt.Sprintf("trip_id=%d date=%s count=%d seats=%s", q.TripID, snap.TravelDate, q.PassengerCount, utils.JoinSeatList(picked)))
	return picked, nil
}

// snapshot serves from the cache when it can. Ledger writes invalidate
// the trip date; seat catalog changes made outside this service (a seat
// taken out of service) only show once CACHE_TTL expires. Reservations
// always re-check the catalog under lock.
func (s AvailabilityService) snapshot(ctx context.Context, tripID int64, travelDate string, seg *seating.Segment) (models.SeatAvailability, error) {
	if tripID <= 0 {
		return models.SeatAvailability{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	trip, err := s.Store.Trips().GetByID(ctx, tripID)
	if err != nil {
		return models.SeatAvailability{}, err
	}
	date, err := resolveTravelDate(trip, travelDate)
	if err != nil {
		return models.SeatAvailability{}, err
	}

	key := cache.AvailabilityKey{TripID: trip.ID, TravelDate: date}
	if seg != nil {
		key.Segment = *seg
	}
	c := cacheOrNoop(s.Cache)
	cached, version := c.Lookup(ctx, key)
	if cached != nil {
		return *cached, nil
	}

	seats, err := s.Store.Seats().ListByVehicle(ctx, trip.VehicleID)
	if err != nil {
		return models.SeatAvailability{}, err
	}
	occupied, err := s.Store.Assignments().ListOccupied(ctx, trip.ID, date)
	if err != nil {
		return models.SeatAvailability{}, err
	}
	snap := buildAvailability(trip, date, seg, seats, occupied)
	c.Store(ctx, key, version, snap)
	return snap, nil
}
