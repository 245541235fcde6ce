package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const locationKeyPrefix = "hackermove:location:"

// RedisLocationCache keeps resolved location identifiers in Redis.
type RedisLocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocationCache connects to addr. A zero ttl stores keys without
// expiry.
func NewRedisLocationCache(addr, password string, db int, ttl time.Duration) *RedisLocationCache {
	return NewRedisLocationCacheFromClient(
		redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), ttl)
}

func NewRedisLocationCacheFromClient(client *redis.Client, ttl time.Duration) *RedisLocationCache {
	return &RedisLocationCache{client: client, ttl: ttl}
}

func (c *RedisLocationCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failure: %w", err)
	}
	return nil
}

// Get returns the cached identifier for key. A missing key is not an error.
func (c *RedisLocationCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, locationKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failure: %w", err)
	}
	return val, true, nil
}

func (c *RedisLocationCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, locationKeyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failure: %w", err)
	}
	return nil
}

func (c *RedisLocationCache) Close() error {
	return c.client.Close()
}
