package ratelimitserver

import (
	"context"
	"sync"
	"time"
)

// Store knows how to count the hits of a key and decide if the hit is allowed.
type Store interface {
	// Hit registers a hit of the key and returns if it's allowed.
	Hit(ctx context.Context, key string) (allowed bool, err error)
}

type memoryWindow struct {
	start time.Time
	count int
}

// memoryStore is a fixed window counter kept in memory.
type memoryStore struct {
	max      int
	duration time.Duration
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryStore returns a Store that allows max hits per key on every fixed
// window of duration.
func NewMemoryStore(max int, duration time.Duration) Store {
	return &memoryStore{
		max:      max,
		duration: duration,
		now:      time.Now,
		windows:  map[string]*memoryWindow{},
	}
}

func (m *memoryStore) Hit(_ context.Context, key string) (bool, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= m.duration {
		w = &memoryWindow{start: now}
		m.windows[key] = w
	}

	if w.count >= m.max {
		return false, nil
	}
	w.count++

	return true, nil
}
