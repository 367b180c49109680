package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolutionPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_resolution_passes_total",
		Help: "Resolution passes by kind (initial, refresh) and outcome (complete, stale).",
	}, []string{"kind", "outcome"})

	WaypointForecastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trip_waypoint_forecast_failures_total",
		Help: "Waypoints left without weather after a forecast lookup failed.",
	})

	GeocodeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trip_geocode_fallbacks_total",
		Help: "Waypoints labelled with coordinates because reverse geocoding found no name.",
	})

	collaboratorLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trip_collaborator_request_seconds",
		Help:    "Latency of routing, forecast and geocoding calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collaborator", "result"})
)

// ObserveCollaborator records the latency of one external call.
func ObserveCollaborator(name string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	collaboratorLatency.WithLabelValues(name, result).Observe(time.Since(start).Seconds())
}
