package services

import (
	"fmt"
	"math"
	"time"
	"trip-weather-service/internal/domain"
)

// DefaultSpeedCorrectionFactor counters the routing engine's observed
// overestimate of real driving time.
const DefaultSpeedCorrectionFactor = 1.27

// ProjectETAs returns copies of waypoints with ETASeconds and ETATime derived
// from departAt and the corrected trip duration. The input slice is not
// modified, so the projection can be repeated for every departure change.
func ProjectETAs(
	waypoints []domain.Waypoint,
	departAt time.Time,
	totalDurationSeconds float64,
	speedCorrectionFactor float64,
) ([]domain.Waypoint, error) {
	if speedCorrectionFactor <= 0 || math.IsNaN(speedCorrectionFactor) {
		return nil, fmt.Errorf("project etas: %w: speed correction factor must be positive, got %v", domain.ErrInvalidInput, speedCorrectionFactor)
	}
	if totalDurationSeconds < 0 {
		return nil, fmt.Errorf("project etas: %w: negative duration %v", domain.ErrInvalidInput, totalDurationSeconds)
	}

	adjusted := totalDurationSeconds / speedCorrectionFactor

	out := make([]domain.Waypoint, len(waypoints))
	for i, wp := range waypoints {
		eta := int(math.Round(wp.RouteProgress * adjusted))
		wp.ETASeconds = eta
		wp.ETATime = departAt.Add(time.Duration(eta) * time.Second)
		out[i] = wp
	}

	return out, nil
}
