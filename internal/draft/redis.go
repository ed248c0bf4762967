package draft

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keyspace prefix for draft entries; the expiry sweep job scans it.
const KeyPrefix = "draft:"

// RedisKV backs the store with Redis. Entries carry a TTL so abandoned
// drafts fall out of the session keyspace on their own.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV wraps a Redis client. ttl <= 0 disables expiry.
func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

// Get fetches a value; a missing key is reported via ok, not an error.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, KeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// Set stores a value under the draft keyspace with the configured TTL.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, KeyPrefix+key, value, r.ttl).Err()
}

// Delete removes the given keys; missing keys are not an error.
func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = KeyPrefix + k
	}
	err := r.client.Del(ctx, prefixed...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
