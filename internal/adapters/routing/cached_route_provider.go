package routing

import (
	"context"
	"fmt"
	"log"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/ports"
)

// Route cache keys round endpoints to ~10m.
const routeKeyDecimals = 4

// CachedRouteProvider serves repeated origin/destination lookups from a
// persistent cache before calling the wrapped provider.
// Cache failures are logged and bypassed.
type CachedRouteProvider struct {
	Provider ports.RouteProvider
	Cache    ports.RouteCache
}

func NewCachedRouteProvider(provider ports.RouteProvider, cache ports.RouteCache) *CachedRouteProvider {
	return &CachedRouteProvider{Provider: provider, Cache: cache}
}

func RouteKey(origin, destination domain.Coordinates, alternatives int) string {
	return fmt.Sprintf("%s|%s|%d", origin.Key(routeKeyDecimals), destination.Key(routeKeyDecimals), alternatives)
}

func (c *CachedRouteProvider) Routes(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	alternatives int,
) ([]domain.RouteCandidate, error) {
	key := RouteKey(origin, destination, alternatives)

	if c.Cache != nil {
		routes, ok, err := c.Cache.Get(ctx, key)
		if err != nil {
			log.Printf("route cache read failed key=%s: %v", key, err)
		} else if ok && len(routes) > 0 {
			return routes, nil
		}
	}

	routes, err := c.Provider.Routes(ctx, origin, destination, alternatives)
	if err != nil {
		return nil, err
	}

	if c.Cache != nil && len(routes) > 0 {
		if err := c.Cache.Put(ctx, key, routes); err != nil {
			log.Printf("route cache write failed key=%s: %v", key, err)
		}
	}

	return routes, nil
}
