package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ SessionCache = (*RedisSessionCache)(nil)

const sessionCacheKeyPrefix = "marine:session:user:"

type RedisSessionCache struct {
	client *redis.Client
}

func NewRedisSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

func (c *RedisSessionCache) GetUsername(ctx context.Context, key string) (string, error) {
	username, err := c.client.Get(ctx, sessionCacheKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cached session: %w", err)
	}
	return username, nil
}

func (c *RedisSessionCache) SetUsername(ctx context.Context, key string, username string, ttl time.Duration) error {
	if err := c.client.Set(ctx, sessionCacheKeyPrefix+key, username, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache session: %w", err)
	}
	return nil
}
