package ratelimitserver

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// tokenBucketStore uses a token bucket per key, the bucket is filled at
// max tokens per duration with a burst of max.
type tokenBucketStore struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewTokenBucketStore returns a Store backed by golang.org/x/time/rate limiters.
func NewTokenBucketStore(max int, duration time.Duration) Store {
	return &tokenBucketStore{
		limit:    rate.Every(duration / time.Duration(max)),
		burst:    max,
		limiters: map[string]*rate.Limiter{},
	}
}

func (t *tokenBucketStore) Hit(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	lim, ok := t.limiters[key]
	if !ok {
		lim = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = lim
	}
	t.mu.Unlock()

	return lim.Allow(), nil
}
