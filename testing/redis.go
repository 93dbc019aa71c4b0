package testing

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// RedisURL returns the redis:// URL of the server used by integration tests, or "" when none is configured
func RedisURL() string {
	return os.Getenv("TEST_REDIS_URL")
}

// NewTestRedis connects to the server at TEST_REDIS_URL
func NewTestRedis(ctx context.Context) (*redis.Client, error) {
	opts, err := redis.ParseURL(RedisURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse TEST_REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping test redis: %w", err)
	}
	return rdb, nil
}
