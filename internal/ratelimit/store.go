package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store counts hits for a key inside a fixed window.
type Store interface {
	// Increment records one hit and returns the hit count of the current window
	// together with the moment the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error)
}

// RedisStore keeps counters in redis so limits hold across replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a redis backed store. Keys are namespaced under prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	if s == nil || s.client == nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit store not configured")
	}

	fullKey := fmt.Sprintf("%s:%s", s.prefix, key)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		ttl = pipe.PTTL(ctx, fullKey)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("increment rate limit counter: %w", err)
	}

	remaining := ttl.Val()
	if remaining <= 0 {
		// First hit of the window, or a counter that lost its expiry.
		if err := s.client.PExpire(ctx, fullKey, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("set rate limit window: %w", err)
		}
		remaining = window
	}

	return incr.Val(), time.Now().Add(remaining), nil
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryStore is a process-local store used when redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &memoryEntry{resetAt: now.Add(window)}
		s.entries[key] = entry
		s.sweep(now)
	}
	entry.count++

	return entry.count, entry.resetAt, nil
}

// sweep drops expired windows; called with the lock held.
func (s *MemoryStore) sweep(now time.Time) {
	for key, entry := range s.entries {
		if !now.Before(entry.resetAt) {
			delete(s.entries, key)
		}
	}
}
