package services

import (
	"context"
	"testing"

	"daladala/internal/domain"
	"daladala/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func TestCreateBookingValidates(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateBookingInput
		kind domain.Kind
	}{
		{"same stops", CreateBookingInput{TripID: f.trip.ID, PickupStopID: 2, DropoffStopID: 2, PassengerCount: 1}, domain.KindValidation},
		{"missing stop", CreateBookingInput{TripID: f.trip.ID, PickupStopID: 2, PassengerCount: 1}, domain.KindValidation},
		{"no passengers", CreateBookingInput{TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 2}, domain.KindValidation},
		{"bad date", CreateBookingInput{TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 2, PassengerCount: 1, TravelDate: "19/10/2026"}, domain.KindValidation},
		{"unknown trip", CreateBookingInput{TripID: 77, PickupStopID: 1, DropoffStopID: 2, PassengerCount: 1}, domain.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.bookings().CreateBooking(ctx, rider, tc.in)
			requireKind(t, err, tc.kind)
		})
	}
}

func TestCreateBookingDefaultsTravelDate(t *testing.T) {
	f := newFixture(t, 4)
	b := f.newBooking(t, rider, 1, 2, 1)
	require.Equal(t, testDate, b.TravelDate)
	require.Equal(t, "unpaid", b.PaymentStatus)
	require.Equal(t, rider.UserID, b.UserID)
}

func TestConfirmAutoAssignsRemainingSeats(t *testing.T) {
	f := newFixture(t, 6)
	ctx := context.Background()

	blocker := f.newBooking(t, otherRider, 1, 5, 1)
	_, err := f.reserve(otherRider, blocker.ID, "2")
	require.NoError(t, err)

	b := f.newBooking(t, rider, 1, 5, 3)
	_, err = f.reserve(rider, b.ID, "6")
	require.NoError(t, err)

	d, err := f.bookings().ConfirmBooking(ctx, rider, ConfirmInput{BookingID: b.ID})
	require.NoError(t, err)
	require.Equal(t, models.BookingConfirmed, d.Status)
	require.Equal(t, "3, 4, 6", d.SeatNumbers)
	require.Len(t, d.Assignments, 3)

	_, err = f.bookings().ConfirmBooking(ctx, rider, ConfirmInput{BookingID: b.ID})
	requireKind(t, err, domain.KindInvalidTransition)
}

func TestConfirmFailureRollsBackStatus(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	b := f.newBooking(t, rider, 1, 2, 3)
	_, err := f.bookings().ConfirmBooking(ctx, rider, ConfirmInput{BookingID: b.ID})
	requireKind(t, err, domain.KindInsufficientCapacity)

	stored, err := f.store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingPending, stored.Status)
	require.Equal(t, 0, f.store.AssignmentCount())
}

func TestCancelReleasesEverySeat(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	d := confirmedWithSeats(t, f, rider, "1", "2", "3")

	_, err := f.bookings().CancelBooking(ctx, admin, d.ID)
	requireKind(t, err, domain.KindAccessDenied)

	cancelled, err := f.bookings().CancelBooking(ctx, rider, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCancelled, cancelled.Status)
	require.Empty(t, cancelled.SeatNumbers)
	for _, a := range cancelled.Assignments {
		require.False(t, a.IsOccupied)
		require.NotNil(t, a.AlightedAt)
	}
	require.Equal(t, 4, f.stats(t).Available)

	_, err = f.bookings().CancelBooking(ctx, rider, d.ID)
	requireKind(t, err, domain.KindInvalidTransition)
}

func TestLifecycleThroughTripCompletion(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	d := confirmedWithSeats(t, f, rider, "1", "2")
	pending := f.newBooking(t, otherRider, 1, 2, 1)

	_, err := f.boarding().BoardPassenger(ctx, driver, d.Assignments[0].ID)
	require.NoError(t, err)

	_, err = f.bookings().CancelBooking(ctx, rider, d.ID)
	requireKind(t, err, domain.KindInvalidTransition)

	_, err = f.bookings().CompleteTrip(ctx, rider, f.trip.ID, "")
	requireKind(t, err, domain.KindAccessDenied)

	done, err := f.bookings().CompleteTrip(ctx, driver, f.trip.ID, "")
	require.NoError(t, err)
	require.Equal(t, testDate, done.TravelDate)
	require.Equal(t, 2, done.ReleasedSeats)
	require.Equal(t, 1, done.CompletedBookings)
	require.Equal(t, 1, done.CancelledBookings)

	got, err := f.bookings().GetBooking(ctx, rider, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCompleted, got.Status)

	closed, err := f.bookings().GetBooking(ctx, otherRider, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCancelled, closed.Status)

	_, err = f.bookings().ConfirmBooking(ctx, rider, ConfirmInput{BookingID: d.ID})
	requireKind(t, err, domain.KindInvalidTransition)
	require.Equal(t, 4, f.stats(t).Available)
}

func TestCompletionClosesPendingBookingsWithSeats(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	pending := f.newBooking(t, rider, 1, 2, 2)
	_, err := f.reservations().ReserveSeats(ctx, rider, ReserveInput{BookingID: pending.ID, SeatNumbers: []string{"1"}})
	require.NoError(t, err)

	done, err := f.bookings().CompleteTrip(ctx, admin, f.trip.ID, testDate)
	require.NoError(t, err)
	require.Equal(t, 1, done.ReleasedSeats)
	require.Equal(t, 0, done.CompletedBookings)
	require.Equal(t, 1, done.CancelledBookings)

	got, err := f.bookings().GetBooking(ctx, rider, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingCancelled, got.Status)
	require.Empty(t, got.SeatNumbers)
	require.False(t, got.Assignments[0].IsOccupied)

	_, err = f.bookings().ConfirmBooking(ctx, rider, ConfirmInput{BookingID: pending.ID})
	requireKind(t, err, domain.KindInvalidTransition)

	_, err = f.bookings().CreateBooking(ctx, otherRider, CreateBookingInput{
		TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 2, PassengerCount: 1, AutoApprove: true,
	})
	requireKind(t, err, domain.KindInvalidTransition)

	stats := f.stats(t)
	require.Equal(t, 0, stats.Occupied)
	require.Equal(t, 4, stats.Available)
}

func TestReserveOnCompletedTripIsRejected(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	d := confirmedWithSeats(t, f, rider, "1")

	_, err := f.bookings().CompleteTrip(ctx, driver, f.trip.ID, "")
	require.NoError(t, err)

	_, err = f.reservations().ReserveSeats(ctx, rider, ReserveInput{BookingID: d.ID, SeatNumbers: []string{"2"}})
	requireKind(t, err, domain.KindInvalidTransition)
	require.Equal(t, 1, f.store.AssignmentCount())
}

func TestGetBookingAccess(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	b := f.newBooking(t, rider, 1, 2, 1)

	_, err := f.bookings().GetBooking(ctx, otherRider, b.ID)
	requireKind(t, err, domain.KindAccessDenied)

	_, err = f.bookings().GetBooking(ctx, driver, b.ID)
	require.NoError(t, err)

	_, err = f.bookings().GetBooking(ctx, admin, b.ID)
	require.NoError(t, err)
}
