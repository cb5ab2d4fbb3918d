package cache

import (
	"context"
	"testing"
	"time"

	"daladala/internal/domain/models"
	"daladala/internal/seating"

	"github.com/stretchr/testify/require"
)

func TestSnapshotKeyIncludesVersionAndSegment(t *testing.T) {
	k := AvailabilityKey{TripID: 7, TravelDate: "2026-10-19", Segment: seating.Segment{Pickup: 2, Dropoff: 5}}
	require.Equal(t, "seats:avail:7:2026-10-19:v3:2-5", snapshotKey(k, 3))
	require.Equal(t, "seats:ver:7:2026-10-19", versionKey(7, "2026-10-19"))
}

func TestMemoryCacheInvalidateHidesOldSnapshot(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryAvailabilityCache(time.Minute)
	key := AvailabilityKey{TripID: 1, TravelDate: "2026-10-19"}

	snap, ver := c.Lookup(ctx, key)
	require.Nil(t, snap)
	c.Store(ctx, key, ver, models.SeatAvailability{TripID: 1, TotalSeats: 4})

	snap, _ = c.Lookup(ctx, key)
	require.NotNil(t, snap)
	require.Equal(t, 4, snap.TotalSeats)

	c.Invalidate(ctx, 1, "2026-10-19")
	snap, _ = c.Lookup(ctx, key)
	require.Nil(t, snap)
}

func TestMemoryCacheDropsStoreAcrossInvalidation(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryAvailabilityCache(time.Minute)
	key := AvailabilityKey{TripID: 1, TravelDate: "2026-10-19"}

	_, ver := c.Lookup(ctx, key)
	c.Invalidate(ctx, 1, "2026-10-19")
	c.Store(ctx, key, ver, models.SeatAvailability{TripID: 1})

	snap, _ := c.Lookup(ctx, key)
	require.Nil(t, snap)
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryAvailabilityCache(time.Second)
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	key := AvailabilityKey{TripID: 2, TravelDate: "2026-10-19"}

	c.Store(ctx, key, 0, models.SeatAvailability{TripID: 2})
	now = now.Add(2 * time.Second)
	snap, _ := c.Lookup(ctx, key)
	require.Nil(t, snap)
}

func TestNewFallsBackToNoop(t *testing.T) {
	require.IsType(t, Noop{}, New("redis", nil, time.Minute))
	require.IsType(t, Noop{}, New("none", nil, time.Minute))
	require.IsType(t, &MemoryAvailabilityCache{}, New("memory", nil, time.Minute))
}
