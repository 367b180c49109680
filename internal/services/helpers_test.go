package services

import (
	"math"
	"trip-weather-service/internal/domain"
)

// segmentDegrees is slightly more than one mile of latitude, so that n
// segments always accumulate to at least n miles despite rounding.
var segmentDegrees = 1.0001 * 180 / (math.Pi * 3958.8)

// northboundRoute builds a straight route along a meridian, one vertex per
// mile, reporting totalMiles as its distance.
func northboundRoute(segments int, totalMiles, durationSeconds float64) domain.RouteCandidate {
	geom := make([]domain.Coordinates, segments+1)
	for i := range geom {
		geom[i] = domain.Coordinates{Lat: 30 + float64(i)*segmentDegrees, Lon: -100}
	}
	return domain.RouteCandidate{
		Geometry:        geom,
		DistanceMeters:  totalMiles * domain.MetersPerMile,
		DurationSeconds: durationSeconds,
	}
}

func ptr[T any](v T) *T { return &v }
