package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linklens/linklens/internal/geo"
)

const (
	geoKeyPrefix = "geo:"

	// GeoTTL is the TTL for cached geolocation lookups. Locations for one
	// IP change rarely, so a day avoids hammering the lookup service.
	GeoTTL = 24 * time.Hour
)

// GetGeo retrieves a cached geolocation result for an IP.
// Returns (nil, nil) on a miss so the resolver treats it as a lookup.
func (c *Cache) GetGeo(ctx context.Context, ip string) (*geo.Location, error) {
	data, err := c.client.Get(ctx, geoKeyPrefix+ip).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var loc geo.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, fmt.Errorf("failed to decode cached location: %w", err)
	}

	return &loc, nil
}

// SetGeo stores a geolocation result for an IP.
func (c *Cache) SetGeo(ctx context.Context, ip string, loc geo.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}

	if err := c.client.Set(ctx, geoKeyPrefix+ip, data, GeoTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache location: %w", err)
	}

	return nil
}
