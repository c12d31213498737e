package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linklens/linklens/internal/model"
)

// Cache key prefixes and TTLs.
const (
	linkKeyPrefix     = "link:"
	negCacheKeySuffix = ":neg"

	// DefaultLinkTTL is the TTL for cached link data.
	DefaultLinkTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetLink retrieves a link from cache by short code.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLink(ctx context.Context, shortCode string) (*model.CachedLink, error) {
	key := linkKeyPrefix + shortCode

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedLink{
		ID:          result["id"],
		Destination: result["destination"],
		Title:       result["title"],
		CreatedAt:   result["created_at"],
	}

	return cached, nil
}

// SetLink stores a link in cache.
func (c *Cache) SetLink(ctx context.Context, shortCode string, link *model.Link) error {
	key := linkKeyPrefix + shortCode
	cached := link.ToCachedLink()

	fields := map[string]any{
		"id":          cached.ID,
		"destination": cached.Destination,
		"created_at":  cached.CreatedAt,
	}
	if cached.Title != "" {
		fields["title"] = cached.Title
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultLinkTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache link: %w", err)
	}

	// Remove negative cache if exists
	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// DeleteLink removes a link from cache.
func (c *Cache) DeleteLink(ctx context.Context, shortCode string) error {
	key := linkKeyPrefix + shortCode

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete link from cache: %w", err)
	}

	return nil
}

// SetNegativeCache marks a short code as known-missing so repeated lookups
// for dead codes skip the database for a short window.
func (c *Cache) SetNegativeCache(ctx context.Context, shortCode string) error {
	key := linkKeyPrefix + shortCode + negCacheKeySuffix
	return c.client.Set(ctx, key, "1", NegativeCacheTTL).Err()
}

// IsNegativelyCached reports whether a short code is negatively cached.
func (c *Cache) IsNegativelyCached(ctx context.Context, shortCode string) (bool, error) {
	key := linkKeyPrefix + shortCode + negCacheKeySuffix
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
