package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"daladala/internal/domain/models"
)

type memoryEntry struct {
	snap      models.SeatAvailability
	expiresAt time.Time
}

// MemoryAvailabilityCache is a process-local cache for single-instance
// deployments and tests.
type MemoryAvailabilityCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	versions map[string]int64
	entries  map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryAvailabilityCache(ttl time.Duration) *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		ttl:      ttl,
		versions: map[string]int64{},
		entries:  map[string]memoryEntry{},
		now:      time.Now,
	}
}

func (c *MemoryAvailabilityCache) Lookup(_ context.Context, key AvailabilityKey) (*models.SeatAvailability, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	version := c.versions[versionKey(key.TripID, key.TravelDate)]
	skey := snapshotKey(key, version)
	e, ok := c.entries[skey]
	if !ok {
		return nil, version
	}
	if c.ttl > 0 && c.now().After(e.expiresAt) {
		delete(c.entries, skey)
		return nil, version
	}
	snap := e.snap
	return &snap, version
}

func (c *MemoryAvailabilityCache) Store(_ context.Context, key AvailabilityKey, version int64, snap models.SeatAvailability) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.versions[versionKey(key.TripID, key.TravelDate)] != version {
		return
	}
	c.entries[snapshotKey(key, version)] = memoryEntry{snap: snap, expiresAt: c.now().Add(c.ttl)}
}

func (c *MemoryAvailabilityCache) Invalidate(_ context.Context, tripID int64, travelDate string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	vkey := versionKey(tripID, travelDate)
	old := c.versions[vkey]
	c.versions[vkey] = old + 1
	prefix := snapshotPrefix(tripID, travelDate, old)
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}
