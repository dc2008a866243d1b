package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "club:session"

// RedisStore keeps session values in Redis so they survive restarts and are
// shared between replicas. Every write refreshes the key's TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A ttl of zero keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sessionID, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, sessionID, key)
}

func (r *RedisStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, redisKey(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading session key %q: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, sessionID, key, value string) error {
	if err := r.client.Set(ctx, redisKey(sessionID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing session key %q: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := r.client.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("deleting session key %q: %w", key, err)
	}
	return nil
}
