package services

import (
	"context"
	"fmt"
	"time"

	"daladala/internal/cache"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
	"daladala/internal/repositories"
	"daladala/internal/utils"
)

// ReservationService turns a seat selection into ledger rows.
type ReservationService struct {
	Store     repositories.Store
	Cache     cache.AvailabilityCache
	Clock     func() time.Time
	RequestID string
}

type ReserveInput struct {
	BookingID      int64
	SeatNumbers    []string
	PassengerNames []string
}

// ReserveSeats reserves the named seats for a booking in one
// transaction. Either every seat is committed or none is.
func (s ReservationService) ReserveSeats(ctx context.Context, caller domain.RequestContext, in ReserveInput) (models.ReservationResult, error) {
	if in.BookingID <= 0 {
		return models.ReservationResult{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	now := clockOrNow(s.Clock)

	var result models.ReservationResult
	err := s.Store.WithinTx(ctx, func(repos repositories.Repos) error {
		b, trip, err := lockBookingForReservation(ctx, repos, in.BookingID)
		if err != nil {
			return err
		}
		if !canManageBooking(caller, b) {
			return domain.AccessDeniedError{Resource: fmt.Sprintf("booking %d", b.ID), UserID: caller.UserID}
		}
		reserved, err := reserveInTx(ctx, repos, reservationRequest{
			booking: b,
			trip:    trip,
			seats:   in.SeatNumbers,
			names:   in.PassengerNames,
			now:     now,
		})
		if err != nil {
			return err
		}
		result = models.ReservationResult{BookingID: b.ID, TripID: b.TripID, TravelDate: b.TravelDate, ReservedSeats: reserved}
		return nil
	})
	if err != nil {
		utils.LogFailure(s.RequestID, "reservation", "reserve_seats", err)
		return models.ReservationResult{}, err
	}

	cacheOrNoop(s.Cache).Invalidate(ctx, result.TripID, result.TravelDate)
	utils.LogEvent(s.RequestID, "reservation", "reserve_seats",
		fmt.Sprintf("booking_id=%d trip_id=%d date=%s seats=%s", result.BookingID, result.TripID, result.TravelDate, utils.JoinSeatList(result.SeatNumbers())))
	return result, nil
}
