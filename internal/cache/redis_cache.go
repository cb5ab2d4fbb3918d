package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"daladala/internal/domain/models"
	"daladala/internal/utils"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 500 * time.Millisecond

// RedisAvailabilityCache shares snapshots between API instances. Redis
// failures degrade to cache misses.
type RedisAvailabilityCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisAvailabilityCache(client *redis.Client, prefix string, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisAvailabilityCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisAvailabilityCache) Lookup(ctx context.Context, key AvailabilityKey) (*models.SeatAvailability, int64) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	version, err := r.version(ctx, key.TripID, key.TravelDate)
	if err != nil {
		utils.LogFailure("", "cache", "lookup_version", err)
		return nil, -1
	}
	raw, err := r.client.Get(ctx, r.key(snapshotKey(key, version))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version
	}
	if err != nil {
		utils.LogFailure("", "cache", "lookup", err)
		return nil, version
	}
	var snap models.SeatAvailability
	if err := json.Unmarshal(raw, &snap); err != nil {
		utils.LogFailure("", "cache", "decode", err)
		return nil, version
	}
	return &snap, version
}

// Store ignores a negative version, which Lookup returns when the
// version itself could not be read.
func (r *RedisAvailabilityCache) Store(ctx context.Context, key AvailabilityKey, version int64, snap models.SeatAvailability) {
	if version < 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	data, err := json.Marshal(snap)
	if err != nil {
		utils.LogFailure("", "cache", "encode", err)
		return
	}
	if err := r.client.Set(ctx, r.key(snapshotKey(key, version)), data, r.ttl).Err(); err != nil {
		utils.LogFailure("", "cache", "store", err)
	}
}

func (r *RedisAvailabilityCache) Invalidate(ctx context.Context, tripID int64, travelDate string) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	vkey := r.key(versionKey(tripID, travelDate))
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, vkey)
	pipe.Expire(ctx, vkey, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		utils.LogFailure("", "cache", "invalidate", err)
	}
}

func (r *RedisAvailabilityCache) version(ctx context.Context, tripID int64, travelDate string) (int64, error) {
	raw, err := r.client.Get(ctx, r.key(versionKey(tripID, travelDate))).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
