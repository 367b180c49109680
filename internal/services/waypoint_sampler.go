package services

import (
	"fmt"
	"math"
	"trip-weather-service/internal/domain"
)

const (
	// DefaultIntervalMiles is the spacing between sampled waypoints.
	DefaultIntervalMiles = 50.0

	// A trailing waypoint closer than this to the destination is folded
	// into the destination instead of emitting a second point next to it.
	destinationMergeMiles = 10.0
)

// SampleWaypoints walks the route geometry and emits a waypoint every
// intervalMiles of accumulated great-circle distance between consecutive
// vertices.
//
// The walk approximates on-road distance with straight-line segment lengths,
// so it under-counts on winding roads. Mileage labels come from the
// index-based route progress scaled by the route's reported total.
// The first waypoint is always "Start" and the last is always "Destination".
func SampleWaypoints(route domain.RouteCandidate, intervalMiles float64) ([]domain.Waypoint, error) {
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("sample waypoints: %w", err)
	}
	if intervalMiles <= 0 || math.IsNaN(intervalMiles) {
		return nil, fmt.Errorf("sample waypoints: %w: interval must be positive, got %v", domain.ErrInvalidInput, intervalMiles)
	}

	geometry := route.Geometry
	totalMiles := route.TotalMiles()
	lastIndex := len(geometry) - 1

	waypoints := make([]domain.Waypoint, 0, int(totalMiles/intervalMiles)+2)
	waypoints = append(waypoints, domain.Waypoint{
		Coordinates:   geometry[0],
		VertexIndex:   0,
		RouteProgress: 0,
		Label:         domain.LabelStart,
	})

	accumulated := 0.0
	for i := 1; i <= lastIndex; i++ {
		accumulated += domain.GreatCircleMiles(geometry[i-1], geometry[i])
		if accumulated < intervalMiles {
			continue
		}

		progress := float64(i) / float64(lastIndex)
		miles := int(math.Round(progress * totalMiles))
		waypoints = append(waypoints, domain.Waypoint{
			Coordinates:            geometry[i],
			VertexIndex:            i,
			RouteProgress:          progress,
			DistanceFromStartMiles: miles,
			Label:                  fmt.Sprintf("Mile %d", miles),
		})
		accumulated = 0
	}

	destMiles := int(math.Round(totalMiles))
	last := &waypoints[len(waypoints)-1]

	// The start waypoint is never relabelled, so a short route still has two points.
	if len(waypoints) == 1 || totalMiles-float64(last.DistanceFromStartMiles) > destinationMergeMiles {
		waypoints = append(waypoints, domain.Waypoint{
			Coordinates:            geometry[lastIndex],
			VertexIndex:            lastIndex,
			RouteProgress:          1,
			DistanceFromStartMiles: destMiles,
			Label:                  domain.LabelDestination,
		})
		return waypoints, nil
	}

	last.Label = domain.LabelDestination
	last.RouteProgress = 1
	last.DistanceFromStartMiles = destMiles
	return waypoints, nil
}
