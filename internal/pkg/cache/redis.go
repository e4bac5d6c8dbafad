package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tkubica12/scalable-ai-chat/internal/config"
)

// RedisCache wraps the hot cache that holds in-flight conversations and
// the short-lived token-stream replay buffer.
type RedisCache struct {
	client *redis.Client
}

// New dials Redis and verifies connectivity.
func New(cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Set marshals value as JSON and stores it under key with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get unmarshals the JSON value stored at key into dest. It returns
// redis.Nil, unwrapped, when the key is absent.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes one or more keys.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Exists reports whether key is present.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// Expire refreshes key's TTL without rewriting its value, used by the
// Generator to bump a conversation's 24h TTL on every hit.
func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client for callers that need lower-level access
// (e.g. atomic CAS operations for the per-session in-flight flag noted in
// the design notes as a possible future hardening).
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// IsMiss reports whether err is the not-found sentinel redis.Nil.
func IsMiss(err error) bool {
	return err == redis.Nil
}
