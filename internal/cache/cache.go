// Package cache holds read-side snapshots of seat availability. The
// reservation path never reads from it; every ledger mutation bumps the
// (trip, travel date) version so older snapshots stop being served.
package cache

import (
	"context"
	"fmt"
	"time"

	"daladala/internal/domain/models"
	"daladala/internal/seating"
)

type AvailabilityKey struct {
	TripID     int64
	TravelDate string
	Segment    seating.Segment
}

func versionKey(tripID int64, travelDate string) string {
	return fmt.Sprintf("seats:ver:%d:%s", tripID, travelDate)
}

func snapshotPrefix(tripID int64, travelDate string, version int64) string {
	return fmt.Sprintf("seats:avail:%d:%s:v%d:", tripID, travelDate, version)
}

func snapshotKey(k AvailabilityKey, version int64) string {
	return snapshotPrefix(k.TripID, k.TravelDate, version) +
		fmt.Sprintf("%d-%d", k.Segment.Pickup, k.Segment.Dropoff)
}

// AvailabilityCache stores snapshots under the version current when the
// lookup happened. Store with the version returned by Lookup: a snapshot
// computed across an invalidation lands under a dead version.
type AvailabilityCache interface {
	Lookup(ctx context.Context, key AvailabilityKey) (*models.SeatAvailability, int64)
	Store(ctx context.Context, key AvailabilityKey, version int64, snap models.SeatAvailability)
	Invalidate(ctx context.Context, tripID int64, travelDate string)
}

// Noop disables caching.
type Noop struct{}

func (Noop) Lookup(context.Context, AvailabilityKey) (*models.SeatAvailability, int64) {
	return nil, 0
}
func (Noop) Store(context.Context, AvailabilityKey, int64, models.SeatAvailability) {}
func (Noop) Invalidate(context.Context, int64, string)                              {}

// New picks the cache driver by name: redis, memory or none.
func New(driver string, redisCache *RedisAvailabilityCache, ttl time.Duration) AvailabilityCache {
	switch driver {
	case "redis":
		if redisCache != nil {
			return redisCache
		}
		return Noop{}
	case "memory":
		return NewMemoryAvailabilityCache(ttl)
	default:
		return Noop{}
	}
}
