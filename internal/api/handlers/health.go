package handlers

import (
	"net/http"
	"trip-weather-service/internal/services"
)

type healthResponse struct {
	Status      string `json:"status"`
	ActiveTrips int    `json:"active_trips"`
}

// Health reports liveness and how many trip sessions are held in memory.
func Health(registry *services.TripRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", ActiveTrips: registry.Len()})
	}
}
