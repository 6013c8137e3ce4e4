package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "storeassist/internal/common/errors"
)

// RedisStore backs session memory with Redis so multiple instances share
// state. One Redis key per session key gives each its own TTL for free.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "session"}
}

func (r *RedisStore) key(sessionID, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, sessionID, key)
}

func (r *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(sessionID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewSessionStoreFailedError(err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(sessionID, key), value, ttl).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	pattern := fmt.Sprintf("%s:%s:*", r.prefix, sessionID)
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}
