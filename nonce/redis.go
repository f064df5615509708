package nonce

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key naming: all keys are prefixed to avoid collisions with other
// users of the same database.
const redisKeyPrefix = "async:nonce:"

func redisKey(action, token string) string {
	return redisKeyPrefix + action + ":" + token
}

// RedisStore persists tokens in Redis, making them valid across every
// replica behind the same database. The caller owns the client lifecycle.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a Store backed by the given Redis client.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Save records the token with a Redis TTL; expiry needs no sweeping.
func (s *RedisStore) Save(ctx context.Context, action, token string, ttl time.Duration) error {
	return s.client.Set(ctx, redisKey(action, token), "1", ttl).Err()
}

// Consume deletes the key and reports whether it existed. DEL's reply
// count makes the check-and-remove atomic without a script.
func (s *RedisStore) Consume(ctx context.Context, action, token string) (bool, error) {
	n, err := s.client.Del(ctx, redisKey(action, token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
