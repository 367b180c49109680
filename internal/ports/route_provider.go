package ports

import (
	"context"
	"trip-weather-service/internal/domain"
)

// Contract for retrieving driving routes between two coordinates.
type RouteProvider interface {
	// Return up to alternatives route candidates, best first.
	// An empty result with a nil error means no route exists.
	Routes(ctx context.Context, origin, destination domain.Coordinates, alternatives int) ([]domain.RouteCandidate, error)
}

// Port: persistent storage for previously computed routes.
type RouteCache interface {
	Get(ctx context.Context, key string) ([]domain.RouteCandidate, bool, error)
	Put(ctx context.Context, key string, routes []domain.RouteCandidate) error
}

// Contract for turning a typed place or address into a coordinate.
type PlaceSearcher interface {
	Search(ctx context.Context, text string) (domain.Coordinates, error)
}
