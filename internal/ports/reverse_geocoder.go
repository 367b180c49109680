package ports

import (
	"context"
	"trip-weather-service/internal/domain"
)

// Contract for turning a coordinate into an address-like record.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, at domain.Coordinates) (domain.Address, error)
}

// Port: persistent coordinate-key -> display name storage.
type PlaceCache interface {
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	PutMany(ctx context.Context, names map[string]string) error
}
