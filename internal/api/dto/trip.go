package dto

import (
	"time"
	"trip-weather-service/internal/domain"
)

// A point is given either as lat/lon or as a free-text query to search for.
type CoordinatesRequest struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Query string   `json:"query"`
}

type CreateTripRequest struct {
	Origin      *CoordinatesRequest `json:"origin"`
	Destination *CoordinatesRequest `json:"destination"`
	DepartAt    *time.Time          `json:"depart_at"`
}

type SetDestinationRequest struct {
	Destination *CoordinatesRequest `json:"destination"`
	Origin      *CoordinatesRequest `json:"origin"`
}

type SelectRouteRequest struct {
	Index *int `json:"index"`
}

type SetDepartureRequest struct {
	DepartAt *time.Time `json:"depart_at"`
}

type SetAutoRefreshRequest struct {
	Enabled *bool `json:"enabled"`
}

// SelectedRouteResponse carries the geometry needed to draw the selected
// candidate on a map, as [lon, lat] pairs.
type SelectedRouteResponse struct {
	Index           int         `json:"index"`
	DistanceMiles   float64     `json:"distance_miles"`
	DurationSeconds int         `json:"duration_seconds"`
	Geometry        [][]float64 `json:"geometry"`
}

type RouteResponse struct {
	Index           int     `json:"index"`
	DistanceMiles   float64 `json:"distance_miles"`
	DurationSeconds int     `json:"duration_seconds"`
	Vertices        int     `json:"vertices"`
	Selected        bool    `json:"selected"`
}

type WaypointResponse struct {
	Label                  string                  `json:"label"`
	Lat                    float64                 `json:"lat"`
	Lon                    float64                 `json:"lon"`
	DistanceFromStartMiles int                     `json:"distance_from_start_miles"`
	RouteProgress          float64                 `json:"route_progress"`
	ETASeconds             int                     `json:"eta_seconds"`
	ETA                    time.Time               `json:"eta"`
	LocationName           string                  `json:"location_name,omitempty"`
	Weather                *domain.WeatherSnapshot `json:"weather"`
}

type TripResponse struct {
	ID          string              `json:"id"`
	State       string              `json:"state"`
	Origin      *domain.Coordinates `json:"origin,omitempty"`
	Destination *domain.Coordinates `json:"destination,omitempty"`
	DepartAt    time.Time           `json:"depart_at"`
	Routes      []RouteResponse     `json:"routes"`
	Waypoints   []WaypointResponse  `json:"waypoints"`
	Summary     *domain.TripSummary `json:"summary"`
	Error       string              `json:"error,omitempty"`
	Retryable   bool                `json:"retryable,omitempty"`
	AutoRefresh bool                `json:"auto_refresh"`
	UpdatedAt   *time.Time          `json:"updated_at,omitempty"`
}
