package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-locator/internal/geocode"

	"github.com/redis/go-redis/v9"
)

const geoPrefix = "locator:geocode:"

// GeoCache keeps geocoder results in Redis so restarts and parallel
// processes share one lookup per address.
type GeoCache struct {
	rdb redis.Cmdable
}

func NewGeoCache(rdb redis.Cmdable) *GeoCache {
	return &GeoCache{rdb: rdb}
}

func (c *GeoCache) Get(ctx context.Context, key string) (geocode.Point, bool, error) {
	raw, err := c.rdb.Get(ctx, geoPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return geocode.Point{}, false, nil
	}
	if err != nil {
		return geocode.Point{}, false, err
	}
	var p geocode.Point
	if err := json.Unmarshal(raw, &p); err != nil {
		return geocode.Point{}, false, err
	}
	return p, true, nil
}

func (c *GeoCache) Set(ctx context.Context, key string, p geocode.Point, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, geoPrefix+key, raw, ttl).Err()
}
