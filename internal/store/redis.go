package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shorter/internal/shortener"
)

// swapRefScript sets KEYS[1] to ARGV[2] only if it currently holds ARGV[1].
// An empty ARGV[1] requires the key to be absent.
var swapRefScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then
  if ARGV[1] ~= '' then
    return 0
  end
elseif current ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

// RedisBackend is a Redis implementation of ObjectBackend.
type RedisBackend struct {
	client    *redis.Client
	objPrefix string // "shorter:obj:" for id -> content
	refPrefix string // "shorter:ref:" for ref -> commit id
}

// NewRedisBackend creates a new Redis-backed object backend.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{
		client:    client,
		objPrefix: "shorter:obj:",
		refPrefix: "shorter:ref:",
	}
}

func (r *RedisBackend) PutObject(ctx context.Context, id string, data []byte) error {
	return r.client.SetNX(ctx, r.objPrefix+id, data, 0).Err()
}

func (r *RedisBackend) GetObject(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.objPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("object %s: %w", id, shortener.ErrNotFound)
		}

		return nil, err
	}

	return data, nil
}

func (r *RedisBackend) GetRef(ctx context.Context, name string) (string, error) {
	target, err := r.client.Get(ctx, r.refPrefix+name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("ref %s: %w", name, shortener.ErrNotFound)
		}

		return "", err
	}

	return target, nil
}

func (r *RedisBackend) SwapRef(ctx context.Context, name, expected, next string) (bool, error) {
	swapped, err := swapRefScript.Run(ctx, r.client, []string{r.refPrefix + name}, expected, next).Int()
	if err != nil {
		return false, err
	}

	return swapped == 1, nil
}
