package domain

import "fmt"

// Represents one route option between origin and destination, as returned
// by the routing engine. Geometry is never mutated after construction.
type RouteCandidate struct {
	Geometry        []Coordinates `json:"geometry"`
	DistanceMeters  float64       `json:"distance_meters"`
	DurationSeconds float64       `json:"duration_seconds"`
}

// Validate rejects geometry that cannot be sampled.
func (r RouteCandidate) Validate() error {
	if len(r.Geometry) < 2 {
		return fmt.Errorf("%w: route geometry needs at least 2 points, got %d", ErrInvalidInput, len(r.Geometry))
	}
	if r.DistanceMeters < 0 {
		return fmt.Errorf("%w: negative route distance %v", ErrInvalidInput, r.DistanceMeters)
	}
	if r.DurationSeconds < 0 {
		return fmt.Errorf("%w: negative route duration %v", ErrInvalidInput, r.DurationSeconds)
	}
	return nil
}

// TotalMiles returns the routing engine's reported distance in miles.
func (r RouteCandidate) TotalMiles() float64 {
	return r.DistanceMeters / MetersPerMile
}
