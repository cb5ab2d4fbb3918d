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

const paymentUnpaid = "unpaid"

// BookingService drives the booking lifecycle. Every transition that
// touches seats runs in the same transaction as the seat ledger change.
type BookingService struct {
	Store     repositories.Store
	Cache     cache.AvailabilityCache
	Clock     func() time.Time
	RequestID string
}

type CreateBookingInput struct {
	TripID         int64
	PickupStopID   domain.StopID
	DropoffStopID  domain.StopID
	PassengerCount int
	TravelDate     string
	TotalAmount    int64
	AutoApprove    bool
	SeatNumbers    []string
	PassengerNames []string
}

type ConfirmInput struct {
	BookingID      int64
	SeatNumbers    []string
	PassengerNames []string
}

// CreateBooking stores a pending booking for the caller. Explicit seats
// are reserved right away; AutoApprove also confirms the booking and
// auto-assigns seats when none were named.
func (s BookingService) CreateBooking(ctx context.Context, caller domain.RequestContext, in CreateBookingInput) (models.BookingDetail, error) {
	if caller.UserID <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "user_id", Msg: "invalid id"}
	}
	if in.TripID <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	if _, err := requiredSegment(in.PickupStopID, in.DropoffStopID); err != nil {
		return models.BookingDetail{}, err
	}
	if in.PassengerCount <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "passenger_count", Msg: "must be at least 1"}
	}
	if in.TotalAmount < 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "total_amount", Msg: "must not be negative"}
	}
	now := clockOrNow(s.Clock)

	var (
		bookingID int64
		reserved  bool
		date      string
	)
	err := s.Store.WithinTx(ctx, func(repos repositories.Repos) error {
		trip, err := repos.Trips().LockShared(ctx, in.TripID)
		if err != nil {
			return err
		}
		if trip.IsCompleted() {
			return domain.TripClosed(trip.ID)
		}
		date, err = resolveTravelDate(trip, in.TravelDate)
		if err != nil {
			return err
		}
		b := models.Booking{
			UserID:         caller.UserID,
			TripID:         trip.ID,
			PickupStopID:   in.PickupStopID,
			DropoffStopID:  in.DropoffStopID,
			PassengerCount: in.PassengerCount,
			TravelDate:     date,
			Status:         models.BookingPending,
			PaymentStatus:  paymentUnpaid,
			TotalAmount:    in.TotalAmount,
			CreatedAt:      now,
		}
		if in.AutoApprove {
			b.Status = models.BookingConfirmed
		}
		bookingID, err = repos.Bookings().Create(ctx, &b)
		if err != nil {
			return err
		}
		b.ID = bookingID

		req := reservationRequest{booking: b, trip: trip, seats: in.SeatNumbers, names: in.PassengerNames, now: now}
		switch {
		case len(utils.NormalizeSeats(in.SeatNumbers)) > 0:
			_, err = reserveInTx(ctx, repos, req)
		case in.AutoApprove:
			_, err = autoReserveInTx(ctx, repos, req, b.PassengerCount)
		default:
			return nil
		}
		reserved = err == nil
		return err
	})
	if err != nil {
		utils.LogFailure(s.RequestID, "booking", "create", err)
		return models.BookingDetail{}, err
	}
	if reserved {
		cacheOrNoop(s.Cache).Invalidate(ctx, in.TripID, date)
	}
	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("booking_id=%d trip_id=%d date=%s passengers=%d auto_approve=%t", bookingID, in.TripID, date, in.PassengerCount, in.AutoApprove))
	return s.detail(ctx, bookingID)
}

// ConfirmBooking moves a pending booking to confirmed and fills its
// remaining seats, either the named ones or auto-assigned.
func (s BookingService) ConfirmBooking(ctx context.Context, caller domain.RequestContext, in ConfirmInput) (models.BookingDetail, error) {
	if in.BookingID <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	now := clockOrNow(s.Clock)

	var b models.Booking
	err := s.Store.WithinTx(ctx, func(repos repositories.Repos) error {
		var (
			trip models.Trip
			err  error
		)
		b, trip, err = lockBookingForReservation(ctx, repos, in.BookingID)
		if err != nil {
			return err
		}
		if !canManageBooking(caller, b) {
			return domain.AccessDeniedError{Resource: fmt.Sprintf("booking %d", b.ID), UserID: caller.UserID}
		}
		if trip.IsCompleted() {
			return domain.TripClosed(trip.ID)
		}
		if !b.Status.CanTransition(models.BookingConfirmed) {
			return domain.InvalidTransition(b.ID, string(b.Status), string(models.BookingConfirmed))
		}
		if err := repos.Bookings().UpdateStatus(ctx, b.ID, models.BookingConfirmed); err != nil {
			return err
		}
		b.Status = models.BookingConfirmed

		held, err := repos.Assignments().ListByBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		remaining := b.PassengerCount - occupiedCount(held)
		req := reservationRequest{booking: b, trip: trip, seats: in.SeatNumbers, names: in.PassengerNames, now: now}
		switch {
		case len(utils.NormalizeSeats(in.SeatNumbers)) > 0:
			_, err = reserveInTx(ctx, repos, req)
		case remaining > 0:
			_, err = autoReserveInTx(ctx, repos, req, remaining)
		}
		return err
	})
	if err != nil {
		utils.LogFailure(s.RequestID, "booking", "confirm", err)
		return models.BookingDetail{}, err
	}
	cacheOrNoop(s.Cache).Invalidate(ctx, b.TripID, b.TravelDate)
	utils.LogEvent(s.RequestID, "booking", "confirm", fmt.Sprintf("booking_id=%d trip_id=%d", b.ID, b.TripID))
	return s.detail(ctx, b.ID)
}

// CancelBooking is only open to the booking owner. Every held seat is
// released and the seat summary cleared.
func (s BookingService) CancelBooking(ctx context.Context, caller domain.RequestContext, bookingID int64) (models.BookingDetail, error) {
	if bookingID <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	now := clockOrNow(s.Clock)

	var (
		b        models.Booking
		released int
	)
	err := s.Store.WithinTx(ctx, func(repos repositories.Repos) error {
		var err error
		b, err = repos.Bookings().LockByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if caller.UserID != b.UserID {
			return domain.AccessDeniedError{Resource: fmt.Sprintf("booking %d", b.ID), UserID: caller.UserID}
		}
		if !b.Status.CanTransition(models.BookingCancelled) {
			return domain.InvalidTransition(b.ID, string(b.Status), string(models.BookingCancelled))
		}
		if released, err = repos.Assignments().ReleaseByBooking(ctx, b.ID, now); err != nil {
			return err
		}
		if err := repos.Bookings().UpdateSeatNumbers(ctx, b.ID, ""); err != nil {
			return err
		}
		return repos.Bookings().UpdateStatus(ctx, b.ID, models.BookingCancelled)
	})
	if err != nil {
		utils.LogFailure(s.RequestID, "booking", "cancel", err)
		return models.BookingDetail{}, err
	}
	cacheOrNoop(s.Cache).Invalidate(ctx, b.TripID, b.TravelDate)
	utils.LogEvent(s.RequestID, "booking", "cancel", fmt.Sprintf("booking_id=%d released=%d", b.ID, released))
	return s.detail(ctx, b.ID)
}

// GetBooking returns the booking with its assignments for the owner,
// an admin or the trip's driver.
func (s BookingService) GetBooking(ctx context.Context, caller domain.RequestContext, bookingID int64) (models.BookingDetail, error) {
	if bookingID <= 0 {
		return models.BookingDetail{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	d, err := s.detail(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, err
	}
	if canManageBooking(caller, d.Booking) {
		return d, nil
	}
	trip, err := s.Store.Trips().GetByID(ctx, d.TripID)
	if err != nil {
		return models.BookingDetail{}, err
	}
	if !canOperateTrip(caller, trip) {
		return models.BookingDetail{}, domain.AccessDeniedError{Resource: fmt.Sprintf("booking %d", bookingID), UserID: caller.UserID}
	}
	return d, nil
}

// CompleteTrip closes the trip, alights every remaining passenger of the
// run, completes its confirmed and in-progress bookings and cancels the
// pending ones.
func (s BookingService) CompleteTrip(ctx context.Context, caller domain.RequestContext, tripID int64, travelDate string) (models.TripCompletion, error) {
	if tripID <= 0 {
		return models.TripCompletion{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	now := clockOrNow(s.Clock)

	var out models.TripCompletion
	err := s.Store.WithinTx(ctx, func(repos repositories.Repos) error {
		trip, err := repos.Trips().LockByID(ctx, tripID)
		if err != nil {
			return err
		}
		if !canOperateTrip(caller, trip) {
			return domain.AccessDeniedError{Resource: fmt.Sprintf("trip %d", trip.ID), UserID: caller.UserID}
		}
		date, err := resolveTravelDate(trip, travelDate)
		if err != nil {
			return err
		}
		if err := repos.Trips().MarkCompleted(ctx, trip.ID); err != nil {
			return err
		}
		out = models.TripCompletion{TripID: trip.ID, TravelDate: date}
		if out.CancelledBookings, err = repos.Bookings().CancelPendingByTrip(ctx, trip.ID, date); err != nil {
			return err
		}
		if out.CompletedBookings, err = repos.Bookings().CompleteByTrip(ctx, trip.ID, date); err != nil {
			return err
		}
		out.ReleasedSeats, err = repos.Assignments().ReleaseByTrip(ctx, trip.ID, date, now)
		return err
	})
	if err != nil {
		utils.LogFailure(s.RequestID, "booking", "complete_trip", err)
		return models.TripCompletion{}, err
	}
	cacheOrNoop(s.Cache).Invalidate(ctx, out.TripID, out.TravelDate)
	utils.LogEvent(s.RequestID, "booking", "complete_trip",
		fmt.Sprintf("trip_id=%d date=%s released=%d completed=%d cancelled=%d", out.TripID, out.TravelDate, out.ReleasedSeats, out.CompletedBookings, out.CancelledBookings))
	return out, nil
}

func (s BookingService) detail(ctx context.Context, bookingID int64) (models.BookingDetail, error) {
	b, err := s.Store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, err
	}
	assignments, err := s.Store.Assignments().ListByBooking(ctx, bookingID)
	if err != nil {
		return models.BookingDetail{}, err
	}
	return models.BookingDetail{Booking: b, Assignments: assignments}, nil
}
