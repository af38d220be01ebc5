package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shorter/internal/expiration"
)

// ExpirationRedisStore is a Redis implementation of expiration.DueStore.
// Message ids are kept in a sorted set scored by their due time in milliseconds;
// payloads live in a hash keyed by id.
type ExpirationRedisStore struct {
	client      *redis.Client
	scheduleKey string // "shorter:expirations" sorted set of ids
	payloadKey  string // "shorter:expirations:payload" hash id -> message
}

// NewExpirationRedisStore creates a new Redis-backed due store.
func NewExpirationRedisStore(client *redis.Client) *ExpirationRedisStore {
	return &ExpirationRedisStore{
		client:      client,
		scheduleKey: "shorter:expirations",
		payloadKey:  "shorter:expirations:payload",
	}
}

func (s *ExpirationRedisStore) Add(ctx context.Context, msg *expiration.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// Use a transaction so a message is never scheduled without its payload
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.payloadKey, msg.ID, payload)
		pipe.ZAdd(ctx, s.scheduleKey, redis.Z{
			Score:  float64(msg.NotBefore.UnixMilli()),
			Member: msg.ID,
		})

		return nil
	})

	return err
}

func (s *ExpirationRedisStore) Due(ctx context.Context, now time.Time, limit int) ([]*expiration.Message, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.scheduleKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, nil
	}

	payloads, err := s.client.HMGet(ctx, s.payloadKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	due := make([]*expiration.Message, 0, len(ids))

	for i, raw := range payloads {
		var msg expiration.Message

		str, ok := raw.(string)
		if !ok || json.Unmarshal([]byte(str), &msg) != nil {
			// Orphaned or undecodable entry; it can never be delivered.
			if err := s.Remove(ctx, ids[i]); err != nil {
				return nil, fmt.Errorf("discard expiration %s: %w", ids[i], err)
			}

			continue
		}

		due = append(due, &msg)
	}

	return due, nil
}

func (s *ExpirationRedisStore) Remove(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, s.scheduleKey, id)
		pipe.HDel(ctx, s.payloadKey, id)

		return nil
	})

	return err
}

// Compile-time checks.
var (
	_ expiration.DueStore = (*ExpirationMemoryStore)(nil)
	_ expiration.DueStore = (*ExpirationRedisStore)(nil)
)
