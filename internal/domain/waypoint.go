package domain

import "time"

const (
	LabelStart       = "Start"
	LabelDestination = "Destination"
)

// Represents a sample point along a route candidate's geometry.
// RouteProgress is the index-based fraction along the geometry array.
// ETASeconds and ETATime are derived from the departure time and are
// recomputed without resampling whenever the departure changes.
type Waypoint struct {
	Coordinates            Coordinates `json:"coordinates"`
	VertexIndex            int         `json:"vertex_index"`
	RouteProgress          float64     `json:"route_progress"`
	DistanceFromStartMiles int         `json:"distance_from_start_miles"`
	Label                  string      `json:"label"`
	ETASeconds             int         `json:"eta_seconds"`
	ETATime                time.Time   `json:"eta_time"`
}

// A waypoint joined with its forecast-at-ETA and display name.
// Weather is nil when the forecast lookup failed for this waypoint.
type ResolvedWaypoint struct {
	Waypoint
	Weather      *WeatherSnapshot `json:"weather"`
	LocationName string           `json:"location_name"`
}
