package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"daladala/internal/domain"
	"daladala/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRollsBackFailedTx(t *testing.T) {
	store := NewMemoryStore()
	trip := store.SeedDemo("2026-10-19")
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(r Repos) error {
		b := models.Booking{UserID: 1, TripID: trip.ID, PickupStopID: 1, DropoffStopID: 2, PassengerCount: 1, TravelDate: "2026-10-19"}
		if _, err := r.Bookings().Create(ctx, &b); err != nil {
			return err
		}
		if _, err := r.Assignments().Insert(ctx, &models.SeatAssignment{SeatID: 1, BookingID: b.ID, TripID: trip.ID, TravelDate: "2026-10-19", IsOccupied: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, store.AssignmentCount())

	_, err = store.Bookings().GetByID(ctx, 1)
	require.True(t, domain.IsNotFound(err))
}

func TestMemoryStoreCommitsAndReleases(t *testing.T) {
	store := NewMemoryStore()
	trip := store.SeedDemo("2026-10-19")
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)

	var id int64
	require.NoError(t, store.WithinTx(ctx, func(r Repos) error {
		var err error
		id, err = r.Assignments().Insert(ctx, &models.SeatAssignment{SeatID: 3, BookingID: 1, TripID: trip.ID, TravelDate: "2026-10-19", IsOccupied: true})
		return err
	}))

	occupied, err := store.Assignments().ListOccupied(ctx, trip.ID, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, occupied, 1)
	require.Equal(t, "3", occupied[0].SeatNumber)

	var first, second bool
	require.NoError(t, store.WithinTx(ctx, func(r Repos) error {
		first, _ = r.Assignments().MarkAlighted(ctx, id, at)
		second, _ = r.Assignments().MarkAlighted(ctx, id, at)
		return nil
	}))
	require.True(t, first)
	require.False(t, second)

	a, err := store.Assignments().GetByID(ctx, id)
	require.NoError(t, err)
	require.False(t, a.IsOccupied)
	require.Equal(t, at, *a.AlightedAt)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.WithinTx(ctx, func(Repos) error { called = true; return nil })
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}

func TestMemoryStoreLockByNumbersSkipsUnknown(t *testing.T) {
	store := NewMemoryStore()
	v, _ := store.AddVehicle("T 1 AAA", "1", "2", "A1")

	seats, err := store.Seats().LockByNumbers(context.Background(), v.ID, []string{"A1", "9", "1"})
	require.NoError(t, err)
	require.Len(t, seats, 2)
}
