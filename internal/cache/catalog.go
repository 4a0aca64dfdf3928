package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Catalog list names cached under catalogKeyPrefix.
const (
	ListGenres  = "genres"
	ListArtists = "artists"

	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL bounds staleness when no write invalidates the lists.
	DefaultCatalogTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func catalogKey(list string) string {
	return catalogKeyPrefix + list
}

// GetCatalogList returns a cached distinct list.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetCatalogList(ctx context.Context, list string) ([]string, error) {
	raw, err := c.client.Get(ctx, catalogKey(list)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", list, err)
	}

	return values, nil
}

// SetCatalogList stores a distinct list with ttl; zero selects DefaultCatalogTTL.
func (c *Cache) SetCatalogList(ctx context.Context, list string, values []string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode %s: %w", list, err)
	}

	if err := c.client.Set(ctx, catalogKey(list), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// InvalidateCatalog drops every cached distinct list.
// Called after any song write.
func (c *Cache) InvalidateCatalog(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogKey(ListGenres), catalogKey(ListArtists)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
