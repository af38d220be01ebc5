package store

import (
	"context"
	"slices"
	"sync"
	"time"
)

// RateLimitMemoryStore is an in-memory sliding window log implementing ratelimit.Store.
// It is meant for tests and single-instance deployments.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	log := slices.DeleteFunc(s.requests[key], func(ts time.Time) bool {
		return !ts.After(cutoff)
	})
	log = append(log, now)
	s.requests[key] = log

	return int64(len(log)), nil
}

// Keys returns how many clients are currently tracked.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}
