package services

import (
	"context"
	"testing"

	"daladala/internal/domain"
	"daladala/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func confirmedWithSeats(t *testing.T, f *fixture, caller domain.RequestContext, seats ...string) models.BookingDetail {
	t.Helper()
	d, err := f.bookings().CreateBooking(context.Background(), caller, CreateBookingInput{
		TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 4, PassengerCount: len(seats), AutoApprove: true, SeatNumbers: seats,
	})
	require.NoError(t, err)
	require.Equal(t, models.BookingConfirmed, d.Status)
	require.Len(t, d.Assignments, len(seats))
	return d
}

func TestReleaseSucceedsOnceThenAlreadyAlighted(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	d := confirmedWithSeats(t, f, rider, "1", "2")

	res, err := f.boarding().ReleaseSeat(ctx, rider, d.Assignments[0].ID)
	require.NoError(t, err)
	require.Equal(t, f.now, res.AlightedAt)
	require.Equal(t, "1", res.SeatNumber)

	_, err = f.boarding().ReleaseSeat(ctx, rider, d.Assignments[0].ID)
	requireKind(t, err, domain.KindAlreadyAlighted)

	_, err = f.boarding().BoardPassenger(ctx, rider, d.Assignments[0].ID)
	requireKind(t, err, domain.KindAlreadyAlighted)

	stats := f.stats(t)
	require.Equal(t, 1, stats.Occupied)
	require.Equal(t, 3, stats.Available)

	stored, err := f.store.Bookings().GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "2", stored.SeatNumbers)

	a, err := f.store.Assignments().GetByID(ctx, d.Assignments[0].ID)
	require.NoError(t, err)
	require.False(t, a.IsOccupied)
	require.NotNil(t, a.AlightedAt)
}

func TestBoardMovesBookingInProgress(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	d := confirmedWithSeats(t, f, rider, "1", "2")

	res, err := f.boarding().BoardPassenger(ctx, driver, d.Assignments[0].ID)
	require.NoError(t, err)
	require.Equal(t, f.now, res.BoardedAt)

	_, err = f.boarding().BoardPassenger(ctx, driver, d.Assignments[0].ID)
	requireKind(t, err, domain.KindAlreadyBoarded)

	_, err = f.boarding().BoardPassenger(ctx, rider, d.Assignments[1].ID)
	require.NoError(t, err)

	stored, err := f.store.Bookings().GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingInProgress, stored.Status)
}

func TestBoardingChecksOwnership(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	d := confirmedWithSeats(t, f, rider, "1")

	_, err := f.boarding().BoardPassenger(ctx, otherRider, d.Assignments[0].ID)
	requireKind(t, err, domain.KindAccessDenied)

	otherDriver := domain.RequestContext{UserID: 8, Role: domain.RoleDriver}
	_, err = f.boarding().ReleaseSeat(ctx, otherDriver, d.Assignments[0].ID)
	requireKind(t, err, domain.KindAccessDenied)

	_, err = f.boarding().ReleaseSeat(ctx, admin, d.Assignments[0].ID)
	require.NoError(t, err)

	_, err = f.boarding().BoardPassenger(ctx, rider, 999)
	requireKind(t, err, domain.KindNotFound)
}

func TestBoardingPendingBookingIsRejected(t *testing.T) {
	f := newFixture(t, 4)
	b := f.newBooking(t, rider, 1, 2, 1)
	res, err := f.reserve(rider, b.ID, "1")
	require.NoError(t, err)

	_, err = f.boarding().BoardPassenger(context.Background(), rider, res.ReservedSeats[0].AssignmentID)
	requireKind(t, err, domain.KindInvalidTransition)
}
