package forecast

import (
	"context"
	"log"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/ports"
)

// Forecast cache keys round to ~1km, well inside the model grid.
const forecastKeyDecimals = 2

// CachedForecastProvider shares forecasts between nearby waypoints and trips
// for the cache's TTL. Cache errors fall through to the provider.
type CachedForecastProvider struct {
	Provider ports.ForecastProvider
	Cache    ports.ForecastCache
}

func NewCachedForecastProvider(provider ports.ForecastProvider, cache ports.ForecastCache) *CachedForecastProvider {
	return &CachedForecastProvider{Provider: provider, Cache: cache}
}

func (c *CachedForecastProvider) Forecast(ctx context.Context, at domain.Coordinates) (domain.Forecast, error) {
	key := at.Key(forecastKeyDecimals)

	if c.Cache != nil {
		f, ok, err := c.Cache.Get(ctx, key)
		if err != nil {
			log.Printf("forecast cache read failed key=%s: %v", key, err)
		} else if ok {
			return f, nil
		}
	}

	f, err := c.Provider.Forecast(ctx, at)
	if err != nil {
		return domain.Forecast{}, err
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, key, f); err != nil {
			log.Printf("forecast cache write failed key=%s: %v", key, err)
		}
	}

	return f, nil
}
