package ratelimitserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore is a fixed window counter shared through Redis, the window
// starts with the first hit of the key and expires after the duration.
type redisStore struct {
	rdb      redis.Cmdable
	max      int64
	duration time.Duration
	prefix   string
}

// NewRedisStore returns a Store that allows max hits per key on every fixed
// window of duration using Redis to keep the counters.
func NewRedisStore(rdb redis.Cmdable, max int, duration time.Duration, prefix string) Store {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &redisStore{
		rdb:      rdb,
		max:      int64(max),
		duration: duration,
		prefix:   prefix,
	}
}

func (r *redisStore) Hit(ctx context.Context, key string) (bool, error) {
	k := r.prefix + ":" + key

	count, err := r.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("could not register hit on redis: %w", err)
	}

	// The first hit starts the window.
	if count == 1 {
		if err := r.rdb.PExpire(ctx, k, r.duration).Err(); err != nil {
			return false, fmt.Errorf("could not set window expiration on redis: %w", err)
		}
	}

	return count <= r.max, nil
}
