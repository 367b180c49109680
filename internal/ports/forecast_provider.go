package ports

import (
	"context"
	"trip-weather-service/internal/domain"
)

// Contract for retrieving hourly and current weather for a coordinate.
type ForecastProvider interface {
	Forecast(ctx context.Context, at domain.Coordinates) (domain.Forecast, error)
}

// Port: short-lived forecast storage shared across trips.
type ForecastCache interface {
	Get(ctx context.Context, key string) (domain.Forecast, bool, error)
	Set(ctx context.Context, key string, f domain.Forecast) error
}
