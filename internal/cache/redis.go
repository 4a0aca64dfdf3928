// Package cache provides the Redis access layer: the distinct-list catalog
// cache and the login token bucket.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis client. Zero values fall back to defaults.
type Options struct {
	PoolSize int
	// Timeout bounds each read and write. Cache calls sit on the request
	// path, so a slow Redis degrades to a miss instead of a stall.
	Timeout time.Duration
}

const (
	defaultPoolSize = 10
	defaultTimeout  = time.Second
)

// Cache wraps a Redis client with the catalog and rate limit operations.
type Cache struct {
	client *redis.Client
	now    func() time.Time
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, redisURL string, opts Options) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	opt.PoolSize = opts.PoolSize
	opt.MinIdleConns = max(1, opts.PoolSize/5)
	opt.PoolTimeout = 4 * opts.Timeout
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ReadTimeout = opts.Timeout
	opt.WriteTimeout = opts.Timeout

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client, now: time.Now}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying client for test fixtures.
func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
