package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"trip-weather-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisForecastCache keeps forecasts for a short TTL so that trips sharing
// a corridor do not refetch the same grid cell.
type RedisForecastCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisForecastCache(rdb *redis.Client, ttl time.Duration) *RedisForecastCache {
	return &RedisForecastCache{rdb: rdb, ttl: ttl}
}

func forecastKey(key string) string { return "forecast:" + key }

func (c *RedisForecastCache) Get(ctx context.Context, key string) (domain.Forecast, bool, error) {
	b, err := c.rdb.Get(ctx, forecastKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Forecast{}, false, nil
	}
	if err != nil {
		return domain.Forecast{}, false, fmt.Errorf("get forecast cache: %w", err)
	}

	var f domain.Forecast
	if err := json.Unmarshal(b, &f); err != nil {
		return domain.Forecast{}, false, fmt.Errorf("get forecast cache: decode: %w", err)
	}
	return f, true, nil
}

func (c *RedisForecastCache) Set(ctx context.Context, key string, f domain.Forecast) error {
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("set forecast cache: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, forecastKey(key), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("set forecast cache: %w", err)
	}
	return nil
}
