package services

import (
	"context"
	"testing"

	"daladala/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestCapacityIsConservedWithMaintenanceSeats(t *testing.T) {
	f := newFixture(t, 6)
	ctx := context.Background()

	b := f.newBooking(t, rider, 1, 2, 2)
	_, err := f.reserve(rider, b.ID, "1", "3")
	require.NoError(t, err)
	f.store.SetSeatAvailable(f.seats[1].ID, false)
	f.store.SetSeatAvailable(f.seats[2].ID, false)
	f.cache.Invalidate(ctx, f.trip.ID, testDate)

	stats := f.stats(t)
	require.Equal(t, 6, stats.TotalSeats)
	require.Equal(t, 2, stats.Occupied)
	require.Equal(t, 1, stats.OutOfService)
	require.Equal(t, 3, stats.Available)
	require.Equal(t, stats.TotalSeats, stats.Available+stats.Occupied+stats.OutOfService)

	snap, err := f.availability().GetAvailableSeats(ctx, AvailabilityQuery{TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"4", "5", "6"}, snap.AvailableNumbers())
	require.Equal(t, "2", snap.OutOfService[0].SeatNumber)
}

func TestAvailabilityCacheSeesReservations(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	q := AvailabilityQuery{TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 2, TravelDate: testDate}

	before, err := f.availability().GetAvailableSeats(ctx, q)
	require.NoError(t, err)
	require.Len(t, before.Available, 3)

	b := f.newBooking(t, rider, 1, 2, 1)
	_, err = f.reserve(rider, b.ID, "2")
	require.NoError(t, err)

	after, err := f.availability().GetAvailableSeats(ctx, q)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, after.AvailableNumbers())
}

func TestAvailabilityRejectsBadInput(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	_, err := f.availability().GetAvailableSeats(ctx, AvailabilityQuery{TripID: f.trip.ID, PickupStopID: 1})
	requireKind(t, err, domain.KindValidation)

	_, err = f.availability().GetAvailableSeats(ctx, AvailabilityQuery{TripID: 404})
	requireKind(t, err, domain.KindNotFound)

	_, err = f.availability().GetTripSeatStats(ctx, f.trip.ID, "tomorrow")
	requireKind(t, err, domain.KindValidation)

	_, err = f.availability().AutoAssignSeats(ctx, AutoAssignQuery{TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 2})
	requireKind(t, err, domain.KindValidation)

	_, err = f.availability().AutoAssignSeats(ctx, AutoAssignQuery{TripID: f.trip.ID, PassengerCount: 1})
	requireKind(t, err, domain.KindValidation)
}

func TestAutoAssignFallsBackToScatteredSeats(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	for _, seat := range []string{"2", "4"} {
		b := f.newBooking(t, otherRider, 1, 3, 1)
		_, err := f.reserve(otherRider, b.ID, seat)
		require.NoError(t, err)
	}

	picked, err := f.availability().AutoAssignSeats(ctx, AutoAssignQuery{TripID: f.trip.ID, PickupStopID: 1, DropoffStopID: 3, PassengerCount: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, picked)

	picked, err = f.availability().AutoAssignSeats(ctx, AutoAssignQuery{TripID: f.trip.ID, PickupStopID: 4, DropoffStopID: 5, PassengerCount: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, picked)
}

func TestCatalogChangeShowsAfterNextLedgerWrite(t *testing.T) {
	f := newFixture(t, 4)
	require.Equal(t, 4, f.stats(t).Available)

	f.store.SetSeatAvailable(f.seats[3].ID, false)
	require.Equal(t, 4, f.stats(t).Available, "cached until ttl or a ledger write")

	b := f.newBooking(t, rider, 1, 2, 1)
	_, err := f.reserve(rider, b.ID, "4")
	requireKind(t, err, domain.KindSeatUnavailable)

	_, err = f.reserve(rider, b.ID, "1")
	require.NoError(t, err)
	stats := f.stats(t)
	require.Equal(t, 2, stats.Available)
	require.Equal(t, 1, stats.OutOfService)
}
