// Package store provides counter-store backends for
// github.com/admitkit/go-admission.
//
// Currently supported backends:
//   - MemoryStore: in-memory store for single-instance applications
//   - RedisStore: Redis-based store for distributed applications
//
// Stores implement the admission.Store interface: one atomic
// increment-with-TTL operation plus a health check.
//
// Example usage:
//
//	ctx := context.Background()
//	store := store.NewMemory(ctx, time.Minute) // cleanup interval = 1 minute
//	engine := admission.NewEngine(store, admission.DefaultRegistry())
package store

import (
	"context"
	"sync"
	"time"
)

// counterEntry holds the count and expiration for one composite key.
type counterEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of admission.Store.
//
// The mutex makes Increment a single atomic read-modify-write, which is the
// one correctness-critical guarantee the engine needs from a store. An
// optional background goroutine removes expired entries.
//
// Note: MemoryStore is suitable for single-instance applications only; with
// several replicas each instance would enforce its own independent quota.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]counterEntry
}

// NewMemory creates a new MemoryStore.
//
// ctx: a parent context used to manage the lifecycle of the background
// cleanup goroutine.
// cleanupInterval: interval at which expired entries are removed. Pass 0 to
// disable cleanup (entries still reset correctly, they just stay resident).
func NewMemory(ctx context.Context, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]counterEntry),
	}

	if cleanupInterval > 0 {
		go s.runCleanup(ctx, cleanupInterval)
	}

	return s
}

// Increment atomically increases the counter for a key, creating it with
// the given TTL when absent or expired, and returns the new value.
func (s *MemoryStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if found && time.Now().After(e.expiresAt) {
		found = false
	}

	if !found {
		e = counterEntry{
			count:     1,
			expiresAt: time.Now().Add(ttl),
		}
	} else {
		e.count++
	}

	s.entries[key] = e
	return e.count, nil
}

// Ping always succeeds: the process's own memory is never unavailable.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// runCleanup periodically drops expired entries until ctx is cancelled.
func (s *MemoryStore) runCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
