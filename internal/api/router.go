package api

import (
	"net/http"
	"trip-weather-service/internal/api/handlers"
	"trip-weather-service/internal/ports"
	"trip-weather-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(registry *services.TripRegistry, search ports.PlaceSearcher) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)

	trips := &handlers.TripHandler{Registry: registry, Search: search}

	r.Get("/health", handlers.Health(registry))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", trips.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", trips.Get)
			r.Delete("/", trips.Delete)
			r.Get("/route", trips.SelectedRoute)
			r.Post("/route", trips.Recalculate)
			r.Put("/route/selected", trips.SelectRoute)
			r.Put("/destination", trips.SetDestination)
			r.Put("/departure", trips.SetDeparture)
			r.Put("/auto-refresh", trips.SetAutoRefresh)
			r.Post("/refresh", trips.Refresh)
		})
	})

	return r
}
