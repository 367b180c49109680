package services

import (
	"fmt"
	"time"
	"trip-weather-service/internal/domain"
)

// RouteOption describes a route candidate without its geometry.
type RouteOption struct {
	Index           int     `json:"index"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Vertices        int     `json:"vertices"`
	Selected        bool    `json:"selected"`
}

// TripView is a point-in-time copy of a session, safe to hand to callers.
type TripView struct {
	ID          string                    `json:"id"`
	State       TripState                 `json:"state"`
	Origin      *domain.Coordinates       `json:"origin,omitempty"`
	Destination *domain.Coordinates       `json:"destination,omitempty"`
	DepartAt    time.Time                 `json:"depart_at"`
	Routes      []RouteOption             `json:"routes"`
	Selected    int                       `json:"selected"`
	Waypoints   []domain.ResolvedWaypoint `json:"waypoints"`
	Summary     *domain.TripSummary       `json:"summary"`
	Error       string                    `json:"error,omitempty"`
	Retryable   bool                      `json:"retryable,omitempty"`
	AutoRefresh bool                      `json:"auto_refresh"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// Snapshot copies the session state. Before the first pass settles the
// sampled waypoints are returned without weather or names.
func (s *TripSession) Snapshot() TripView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := TripView{
		ID:          s.ID,
		State:       s.state,
		DepartAt:    s.departAt,
		Selected:    s.selected,
		Error:       s.errMsg,
		Retryable:   s.retryable,
		AutoRefresh: s.autoRefresh,
		UpdatedAt:   s.updatedAt,
	}

	if s.origin != nil {
		o := *s.origin
		v.Origin = &o
	}
	if s.destination != nil {
		d := *s.destination
		v.Destination = &d
	}

	v.Routes = make([]RouteOption, 0, len(s.candidates))
	for i, c := range s.candidates {
		v.Routes = append(v.Routes, RouteOption{
			Index:           i,
			DistanceMeters:  c.DistanceMeters,
			DurationSeconds: c.DurationSeconds,
			Vertices:        len(c.Geometry),
			Selected:        i == s.selected,
		})
	}

	if len(s.resolved) > 0 {
		v.Waypoints = make([]domain.ResolvedWaypoint, len(s.resolved))
		copy(v.Waypoints, s.resolved)
	} else {
		v.Waypoints = make([]domain.ResolvedWaypoint, 0, len(s.waypoints))
		for _, wp := range s.waypoints {
			v.Waypoints = append(v.Waypoints, domain.ResolvedWaypoint{Waypoint: wp})
		}
	}

	if s.summary != nil {
		sum := *s.summary
		v.Summary = &sum
	}

	return v
}

// SelectedRoute returns a copy of the selected candidate and its index.
// It fails with ErrInvalidState until a route has been calculated.
func (s *TripSession) SelectedRoute() (domain.RouteCandidate, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.RouteCandidate{}, 0, ErrSessionClosed
	}
	if len(s.candidates) == 0 {
		return domain.RouteCandidate{}, 0, fmt.Errorf("selected route: %w: no route calculated", ErrInvalidState)
	}
	c := s.candidates[s.selected]
	geom := make([]domain.Coordinates, len(c.Geometry))
	copy(geom, c.Geometry)
	c.Geometry = geom
	return c, s.selected, nil
}
