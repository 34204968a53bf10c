package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"search-orchestrator/internal/common/config"
)

// RedisClient wraps the Redis client used for team blocklist storage.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// SIsMember reports set membership for a key.
func (c *RedisClient) SIsMember(ctx context.Context, key string, member string) (bool, error) {
	return c.Client.SIsMember(ctx, key, member).Result()
}

// SAdd adds members to a set.
func (c *RedisClient) SAdd(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return c.Client.SAdd(ctx, key, args...).Err()
}
