package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhd3197/linkweaver/engine"
)

// Redis is a render cache shared across renderer instances. Concurrent
// writers on the same key race harmlessly: the render is a pure function of
// the key's inputs, so last writer wins with an equal value.
type Redis struct {
	client *redis.Client
	config Config
}

// NewRedis creates a Redis render cache with an existing client.
func NewRedis(client *redis.Client, config Config) *Redis {
	return &Redis{client: client, config: applyDefaults(config)}
}

// NewRedisFromURL creates a Redis render cache from a redis:// URL.
func NewRedisFromURL(redisURL string, config Config) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewRedis(redis.NewClient(opts), config), nil
}

// Get returns the entry for key, or nil if absent.
func (r *Redis) Get(ctx context.Context, key string) (*engine.CachedRender, error) {
	data, err := r.client.Get(ctx, r.config.Prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry engine.CachedRender
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached render: %w", err)
	}
	return &entry, nil
}

// Set stores an entry with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, entry *engine.CachedRender) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cached render: %w", err)
	}
	if err := r.client.Set(ctx, r.config.Prefix+key, data, r.config.TTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
