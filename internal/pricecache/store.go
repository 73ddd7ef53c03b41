package pricecache

import (
	"context" // Request-scoped cancellation
	"sync"    // MemoryStore locking
	"time"    // Retention

	"github.com/redis/go-redis/v9" // Redis client

	"crypto_wallet/internal/utils" // Redis JSON helpers
)

// MemoryStore keeps entries in process memory for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]Entry{}}
}

func (m *MemoryStore) Load(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

// RedisStore keeps entries in Redis so every API instance shares one snapshot.
// Keys outlive the cache TTL by retention so a stale fallback is available.
type RedisStore struct {
	rdb       redis.Cmdable
	retention time.Duration
}

func NewRedisStore(rdb redis.Cmdable, retention time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, retention: retention}
}

func (r *RedisStore) Load(ctx context.Context, key string) (Entry, bool, error) {
	var e Entry
	found, err := utils.GetCache(ctx, r.rdb, key, &e)
	if err != nil || !found {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, e Entry) error {
	return utils.SetCache(ctx, r.rdb, key, e, r.retention)
}
