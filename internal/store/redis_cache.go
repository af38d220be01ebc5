package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCacheBackend wraps an ObjectBackend with Redis caching for object reads.
// Objects are immutable and addressed by their hash, so a cached copy can never go
// stale. Refs are always read from the underlying backend.
type RedisCacheBackend struct {
	backend ObjectBackend
	client  *redis.Client
	prefix  string
	ttl     time.Duration
}

// NewRedisCacheBackend creates a new Redis-cached object backend decorator.
func NewRedisCacheBackend(backend ObjectBackend, client *redis.Client, ttl time.Duration) *RedisCacheBackend {
	return &RedisCacheBackend{
		backend: backend,
		client:  client,
		prefix:  "shorter:cache:obj:",
		ttl:     ttl,
	}
}

// PutObject stores an object in the underlying backend and updates the cache.
func (r *RedisCacheBackend) PutObject(ctx context.Context, id string, data []byte) error {
	if err := r.backend.PutObject(ctx, id, data); err != nil {
		return err
	}

	// Write-through: update cache after successful save
	r.cache(ctx, id, data)

	return nil
}

// GetObject retrieves an object, checking the cache first.
func (r *RedisCacheBackend) GetObject(ctx context.Context, id string) ([]byte, error) {
	if data, err := r.client.Get(ctx, r.prefix+id).Bytes(); err == nil {
		return data, nil
	}

	data, err := r.backend.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, id, data)

	return data, nil
}

func (r *RedisCacheBackend) GetRef(ctx context.Context, name string) (string, error) {
	return r.backend.GetRef(ctx, name)
}

func (r *RedisCacheBackend) SwapRef(ctx context.Context, name, expected, next string) (bool, error) {
	return r.backend.SwapRef(ctx, name, expected, next)
}

func (r *RedisCacheBackend) cache(ctx context.Context, id string, data []byte) {
	_ = r.client.Set(ctx, r.prefix+id, data, r.ttl).Err()
}

// Compile-time checks.
var (
	_ ObjectBackend = (*MemoryBackend)(nil)
	_ ObjectBackend = (*RedisBackend)(nil)
	_ ObjectBackend = (*PostgresBackend)(nil)
	_ ObjectBackend = (*RedisCacheBackend)(nil)
)
