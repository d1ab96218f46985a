package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"trade-route-service/internal/platform/obs"
	"trade-route-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dist:"

// RedisDistanceCache stores routing results as "meters:seconds" strings with a TTL.
type RedisDistanceCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisDistanceCache(rdb redis.UniversalClient, ttl time.Duration) *RedisDistanceCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisDistanceCache{rdb: rdb, ttl: ttl}
}

func redisKey(p ports.PairKey) string {
	return redisKeyPrefix + p.Origin + "|" + p.Destination
}

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	pairs []ports.PairKey,
) (_ map[ports.PairKey]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if c.rdb == nil {
		return nil, errors.New("redis distance cache: client is nil")
	}
	if len(pairs) == 0 {
		return map[ports.PairKey]ports.DistanceResult{}, nil
	}

	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = redisKey(p)
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get redis distance cache: mget: %w", err)
	}

	out := make(map[ports.PairKey]ports.DistanceResult, len(pairs))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		r, err := decodeResult(s)
		if err != nil {
			obs.Log(ctx).WithError(err).WithField("key", keys[i]).Warn("skipping corrupt distance cache entry")
			continue
		}
		out[pairs[i]] = r
	}

	return out, nil
}

func (c *RedisDistanceCache) PutMany(ctx context.Context, results map[ports.PairKey]ports.DistanceResult) error {
	if c.rdb == nil {
		return errors.New("redis distance cache: client is nil")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for key, r := range results {
		pipe.Set(ctx, redisKey(key), encodeResult(r), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert redis distance cache: exec pipeline: %w", err)
	}

	return nil
}

func encodeResult(r ports.DistanceResult) string {
	return strconv.Itoa(r.DistanceMeters) + ":" + strconv.Itoa(r.DurationSeconds)
}

func decodeResult(s string) (ports.DistanceResult, error) {
	meters, seconds, ok := strings.Cut(s, ":")
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("decode distance cache value %q: missing separator", s)
	}

	m, err := strconv.Atoi(meters)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode distance cache meters %q: %w", s, err)
	}
	sec, err := strconv.Atoi(seconds)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode distance cache seconds %q: %w", s, err)
	}

	return ports.DistanceResult{DistanceMeters: m, DurationSeconds: sec}, nil
}
