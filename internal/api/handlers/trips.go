package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"trip-weather-service/internal/api/dto"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/ports"
	"trip-weather-service/internal/services"

	"github.com/go-chi/chi/v5"
)

// TripHandler exposes trip sessions over HTTP. Route calculation runs inside
// the request; weather resolution continues in the background and is
// observed by polling GET /trips/{id}.
type TripHandler struct {
	Registry *services.TripRegistry
	Search   ports.PlaceSearcher
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	origin, err := h.toCoordinates(r, "origin", req.Origin)
	if err != nil {
		writeServiceError(w, r, "create trip", err)
		return
	}
	destination, err := h.toCoordinates(r, "destination", req.Destination)
	if err != nil {
		writeServiceError(w, r, "create trip", err)
		return
	}

	s := h.Registry.Create()
	if err := s.SetEndpoints(origin, destination); err != nil {
		_ = h.Registry.Delete(s.ID)
		writeServiceError(w, r, "create trip", err)
		return
	}
	if req.DepartAt != nil {
		if err := s.SetDeparture(*req.DepartAt); err != nil {
			_ = h.Registry.Delete(s.ID)
			writeServiceError(w, r, "create trip", err)
			return
		}
	}

	if !h.calculate(w, r, s) {
		_ = h.Registry.Delete(s.ID)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTripResponse(s.Snapshot()))
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toTripResponse(s.Snapshot()))
}

// SelectedRoute returns the geometry of the selected candidate so a client
// can draw it and offer the alternatives for selection.
func (h *TripHandler) SelectedRoute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	route, index, err := s.SelectedRoute()
	if err != nil {
		writeServiceError(w, r, "selected route", err)
		return
	}

	geometry := make([][]float64, 0, len(route.Geometry))
	for _, c := range route.Geometry {
		geometry = append(geometry, c.CoordsToList())
	}
	writeJSON(w, r, http.StatusOK, dto.SelectedRouteResponse{
		Index:           index,
		DistanceMiles:   route.DistanceMeters / domain.MetersPerMile,
		DurationSeconds: int(route.DurationSeconds),
		Geometry:        geometry,
	})
}

// Recalculate requests a fresh route for the current endpoints; this is the
// retry path after a failed route calculation.
func (h *TripHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if !h.calculate(w, r, s) {
		return
	}
	writeJSON(w, r, http.StatusOK, toTripResponse(s.Snapshot()))
}

func (h *TripHandler) SetDestination(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SetDestinationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	destination, err := h.toCoordinates(r, "destination", req.Destination)
	if err != nil {
		writeServiceError(w, r, "set destination", err)
		return
	}

	if req.Origin != nil {
		origin, err := h.toCoordinates(r, "origin", req.Origin)
		if err != nil {
			writeServiceError(w, r, "set destination", err)
			return
		}
		err = s.SetEndpoints(origin, destination)
	} else {
		err = s.SetDestination(destination)
	}
	if err != nil {
		writeServiceError(w, r, "set destination", err)
		return
	}

	if !h.calculate(w, r, s) {
		return
	}
	writeJSON(w, r, http.StatusOK, toTripResponse(s.Snapshot()))
}

func (h *TripHandler) SelectRoute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SelectRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeError(w, r, http.StatusBadRequest, "index is required")
		return
	}

	if err := s.SelectRoute(*req.Index); err != nil && !isSessionOutcome(err) {
		writeServiceError(w, r, "select route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTripResponse(s.Snapshot()))
}

func (h *TripHandler) SetDeparture(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SetDepartureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DepartAt == nil {
		writeError(w, r, http.StatusBadRequest, "depart_at is required")
		return
	}

	if err := s.SetDeparture(*req.DepartAt); err != nil {
		writeServiceError(w, r, "set departure", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTripResponse(s.Snapshot()))
}

func (h *TripHandler) SetAutoRefresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req dto.SetAutoRefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeError(w, r, http.StatusBadRequest, "enabled is required")
		return
	}

	if err := s.SetAutoRefresh(*req.Enabled); err != nil {
		writeServiceError(w, r, "set auto-refresh", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTripResponse(s.Snapshot()))
}

func (h *TripHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Refresh(); err != nil {
		writeServiceError(w, r, "refresh", err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, toTripResponse(s.Snapshot()))
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, "delete trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TripHandler) session(w http.ResponseWriter, r *http.Request) (*services.TripSession, bool) {
	s, err := h.Registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "lookup trip", err)
		return nil, false
	}
	return s, true
}

// calculate runs route calculation and writes an error response only when the
// failure is not already recorded in the session. Collaborator failures leave
// the trip in the error state and are reported through the trip view.
func (h *TripHandler) calculate(w http.ResponseWriter, r *http.Request, s *services.TripSession) bool {
	err := s.CalculateRoute(r.Context())
	if err == nil || isSessionOutcome(err) {
		return true
	}
	if s.Snapshot().State == services.StateError {
		log.Printf("trip=%s route calculation failed: %v", s.ID, err)
		return true
	}
	writeServiceError(w, r, "calculate route", err)
	return false
}

// isSessionOutcome reports errors the session has already absorbed into its
// own state.
func isSessionOutcome(err error) bool {
	var collab *domain.CollaboratorError
	return errors.Is(err, domain.ErrStaleRequest) ||
		errors.Is(err, domain.ErrNoRoute) ||
		errors.As(err, &collab)
}

func (h *TripHandler) toCoordinates(r *http.Request, field string, c *dto.CoordinatesRequest) (domain.Coordinates, error) {
	if c != nil && c.Lat == nil && c.Lon == nil && strings.TrimSpace(c.Query) != "" {
		if h.Search == nil {
			return domain.Coordinates{}, fmt.Errorf("%w: %s search is not available", domain.ErrInvalidInput, field)
		}
		coords, err := h.Search.Search(r.Context(), c.Query)
		if err != nil && !errors.Is(err, domain.ErrInvalidInput) {
			err = &domain.CollaboratorError{Collaborator: "search", Err: err}
		}
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("%s: %w", field, err)
		}
		return coords, nil
	}
	if c == nil || c.Lat == nil || c.Lon == nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %s lat and lon (or query) are required", domain.ErrInvalidInput, field)
	}
	coords := domain.Coordinates{Lat: *c.Lat, Lon: *c.Lon}
	if err := coords.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%s: %w", field, err)
	}
	return coords, nil
}

func toTripResponse(v services.TripView) dto.TripResponse {
	res := dto.TripResponse{
		ID:          v.ID,
		State:       string(v.State),
		Origin:      v.Origin,
		Destination: v.Destination,
		DepartAt:    v.DepartAt,
		Routes:      make([]dto.RouteResponse, 0, len(v.Routes)),
		Waypoints:   make([]dto.WaypointResponse, 0, len(v.Waypoints)),
		Summary:     v.Summary,
		Error:       v.Error,
		Retryable:   v.Retryable,
		AutoRefresh: v.AutoRefresh,
	}
	if !v.UpdatedAt.IsZero() {
		updated := v.UpdatedAt
		res.UpdatedAt = &updated
	}

	for _, ro := range v.Routes {
		res.Routes = append(res.Routes, dto.RouteResponse{
			Index:           ro.Index,
			DistanceMiles:   ro.DistanceMeters / domain.MetersPerMile,
			DurationSeconds: int(ro.DurationSeconds),
			Vertices:        ro.Vertices,
			Selected:        ro.Selected,
		})
	}

	for _, wp := range v.Waypoints {
		res.Waypoints = append(res.Waypoints, dto.WaypointResponse{
			Label:                  wp.Label,
			Lat:                    wp.Coordinates.Lat,
			Lon:                    wp.Coordinates.Lon,
			DistanceFromStartMiles: wp.DistanceFromStartMiles,
			RouteProgress:          wp.RouteProgress,
			ETASeconds:             wp.ETASeconds,
			ETA:                    wp.ETATime,
			LocationName:           wp.LocationName,
			Weather:                wp.Weather,
		})
	}

	return res
}
