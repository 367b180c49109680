package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/platform/obs"
	"trip-weather-service/internal/ports"
)

type TripState string

const (
	StateIdle              TripState = "idle"
	StateDestinationChosen TripState = "destination_chosen"
	StateRouteCalculating  TripState = "route_calculating"
	StateRouteReady        TripState = "route_ready"
	StateWeatherLoading    TripState = "weather_loading"
	StateWeatherReady      TripState = "weather_ready"
	StateError             TripState = "error"
)

const (
	DefaultRefreshInterval = 5 * time.Minute
	DefaultAlternatives    = 3
)

var (
	ErrInvalidState  = errors.New("operation not allowed in current trip state")
	ErrSessionClosed = errors.New("trip session closed")
)

// Tunables for a trip session. Zero values fall back to the defaults.
type SessionConfig struct {
	IntervalMiles         float64
	SpeedCorrectionFactor float64
	RefreshInterval       time.Duration
	Alternatives          int
	Clock                 func() time.Time
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.IntervalMiles <= 0 {
		c.IntervalMiles = DefaultIntervalMiles
	}
	if c.SpeedCorrectionFactor <= 0 {
		c.SpeedCorrectionFactor = DefaultSpeedCorrectionFactor
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = DefaultRefreshInterval
	}
	if c.Alternatives <= 0 {
		c.Alternatives = DefaultAlternatives
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Collaborators a trip session drives.
type TripDeps struct {
	Routes    ports.RouteProvider
	Forecasts *ForecastResolver
	Places    *PlaceResolver
}

// TripSession owns the state of one active trip: endpoints, route
// candidates, sampled waypoints and the latest resolution pass.
//
// Work for a route runs under an epoch context that is cancelled whenever
// the endpoints change, the route is recalculated, or the trip is cleared.
// Each resolution pass writes a fresh result set; a pass whose context was
// cancelled before it settled is discarded.
type TripSession struct {
	ID string

	deps TripDeps
	cfg  SessionConfig

	mu           sync.Mutex
	state        TripState
	origin       *domain.Coordinates
	destination  *domain.Coordinates
	departAt     time.Time
	candidates   []domain.RouteCandidate
	selected     int
	waypoints    []domain.Waypoint
	names        []string
	resolved     []domain.ResolvedWaypoint
	summary      *domain.TripSummary
	errMsg       string
	retryable    bool
	autoRefresh  bool
	updatedAt    time.Time
	lastActivity time.Time
	closed       bool

	epochCtx      context.Context
	epochCancel   context.CancelFunc
	passCancel    context.CancelFunc
	passDone      chan struct{}
	refreshCancel context.CancelFunc
}

func NewTripSession(id string, deps TripDeps, cfg SessionConfig) *TripSession {
	cfg = cfg.withDefaults()
	now := cfg.Clock()

	s := &TripSession{
		ID:           id,
		deps:         deps,
		cfg:          cfg,
		state:        StateIdle,
		departAt:     now,
		lastActivity: now,
	}
	s.epochCtx, s.epochCancel = context.WithCancel(context.Background())
	return s
}

// SetEndpoints chooses a new origin and destination. Any route, pass or
// refresh timer belonging to the previous endpoints is abandoned.
func (s *TripSession) SetEndpoints(origin, destination domain.Coordinates) error {
	if err := origin.Validate(); err != nil {
		return fmt.Errorf("set endpoints: origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return fmt.Errorf("set endpoints: destination: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.setEndpointsLocked(origin, destination)
	return nil
}

// SetDestination keeps the current origin and picks a new destination.
func (s *TripSession) SetDestination(destination domain.Coordinates) error {
	if err := destination.Validate(); err != nil {
		return fmt.Errorf("set destination: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.origin == nil {
		return fmt.Errorf("set destination: %w: origin is required", domain.ErrInvalidInput)
	}
	s.setEndpointsLocked(*s.origin, destination)
	return nil
}

func (s *TripSession) setEndpointsLocked(origin, destination domain.Coordinates) {
	s.resetLocked()
	s.origin = &origin
	s.destination = &destination
	s.state = StateDestinationChosen
	s.touchLocked()
}

// CalculateRoute requests route candidates and, on success, starts the
// initial resolution pass for the first candidate. A response that arrives
// after the trip moved on returns domain.ErrStaleRequest and changes nothing.
func (s *TripSession) CalculateRoute(ctx context.Context) (err error) {
	defer obs.Time(ctx, "trip.CalculateRoute")(&err)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.origin == nil || s.destination == nil {
		s.mu.Unlock()
		return fmt.Errorf("calculate route: %w: origin and destination are required", domain.ErrInvalidInput)
	}
	if s.deps.Routes == nil {
		s.mu.Unlock()
		return errors.New("calculate route: route provider is nil")
	}

	s.newEpochLocked()
	s.clearRouteLocked()
	s.state = StateRouteCalculating
	s.touchLocked()

	epoch := s.epochCtx
	origin, destination := *s.origin, *s.destination
	alternatives := s.cfg.Alternatives
	s.mu.Unlock()

	rctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(epoch, cancel)
	defer stop()
	defer cancel()

	start := time.Now()
	candidates, routeErr := s.deps.Routes.Routes(rctx, origin, destination, alternatives)
	obs.ObserveCollaborator("routing", start, routeErr)

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch.Err() != nil {
		return domain.ErrStaleRequest
	}

	if routeErr != nil {
		s.failLocked("route calculation failed, please retry", true)
		return &domain.CollaboratorError{Collaborator: "routing", Err: routeErr}
	}

	valid := make([]domain.RouteCandidate, 0, len(candidates))
	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			log.Printf("trip=%s dropping route candidate=%d err=%v", s.ID, i, err)
			continue
		}
		valid = append(valid, c)
	}

	if len(candidates) == 0 {
		s.failLocked("no route found between origin and destination", true)
		return domain.ErrNoRoute
	}
	if len(valid) == 0 {
		s.failLocked("routing engine returned unusable geometry", true)
		return fmt.Errorf("calculate route: %w: every candidate has degenerate geometry", domain.ErrInvalidInput)
	}

	s.candidates = valid
	s.selected = 0
	s.state = StateRouteReady
	return s.startPassLocked(false)
}

// SelectRoute switches to another candidate. Nothing resolved for the old
// candidate is reused and the refresh timer is stopped.
func (s *TripSession) SelectRoute(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if len(s.candidates) == 0 {
		return fmt.Errorf("select route: %w: no route calculated", ErrInvalidState)
	}
	if index < 0 || index >= len(s.candidates) {
		return fmt.Errorf("select route: %w: index %d out of range [0,%d)", domain.ErrInvalidInput, index, len(s.candidates))
	}
	s.touchLocked()
	if index == s.selected && s.state != StateError {
		return nil
	}

	s.stopRefreshLocked()
	s.cancelPassLocked()
	s.selected = index
	s.resolved = nil
	s.summary = nil
	s.state = StateRouteReady
	return s.startPassLocked(false)
}

// SetDeparture moves the departure time and recomputes every ETA in place.
// It never refetches forecasts or names and never changes state.
func (s *TripSession) SetDeparture(departAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.touchLocked()
	s.departAt = departAt

	if len(s.waypoints) == 0 {
		return nil
	}

	projected, err := ProjectETAs(s.waypoints, departAt, s.candidates[s.selected].DurationSeconds, s.cfg.SpeedCorrectionFactor)
	if err != nil {
		return fmt.Errorf("set departure: %w", err)
	}
	s.waypoints = projected

	if len(s.resolved) == len(projected) {
		resolved := make([]domain.ResolvedWaypoint, len(projected))
		for i := range projected {
			resolved[i] = s.resolved[i]
			resolved[i].Waypoint = projected[i]
		}
		s.resolved = resolved
	}
	return nil
}

// SetAutoRefresh starts or stops the periodic refresh timer.
func (s *TripSession) SetAutoRefresh(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.touchLocked()

	if !enabled {
		s.stopRefreshLocked()
		return nil
	}
	if s.autoRefresh {
		return nil
	}

	switch s.state {
	case StateRouteReady, StateWeatherLoading, StateWeatherReady:
	default:
		return fmt.Errorf("enable auto-refresh: %w: state=%s", ErrInvalidState, s.state)
	}

	ctx, cancel := context.WithCancel(s.epochCtx)
	s.refreshCancel = cancel
	s.autoRefresh = true
	go s.refreshLoop(ctx, s.cfg.RefreshInterval)
	return nil
}

// Refresh starts a refresh pass now: forecasts are refetched, names reused.
func (s *TripSession) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateWeatherReady {
		return fmt.Errorf("refresh: %w: state=%s", ErrInvalidState, s.state)
	}
	s.touchLocked()
	return s.startPassLocked(true)
}

// Clear returns the trip to idle and cancels the timer and any in-flight work.
func (s *TripSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.departAt = s.cfg.Clock()
	s.touchLocked()
}

// Close tears the session down. Every later mutation returns ErrSessionClosed.
func (s *TripSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.epochCancel()
	s.closed = true
}

// Wait blocks until no resolution pass is in flight.
func (s *TripSession) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		done := s.passDone
		s.mu.Unlock()

		if done == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
	}
}

// LastActivity reports when a caller last touched the session.
func (s *TripSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *TripSession) refreshLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if ctx.Err() == nil && s.state == StateWeatherReady {
				if err := s.startPassLocked(true); err != nil {
					log.Printf("trip=%s auto-refresh failed: %v", s.ID, err)
				}
			}
			s.mu.Unlock()
		}
	}
}

// startPassLocked launches a resolution pass for the selected candidate.
// An initial pass resamples the route; a refresh pass reuses the waypoints
// and the names from the previous pass.
func (s *TripSession) startPassLocked(refresh bool) error {
	if s.deps.Forecasts == nil || s.deps.Places == nil {
		return errors.New("start resolution: forecast and place resolvers are required")
	}

	if !refresh {
		route := s.candidates[s.selected]
		s.waypoints = nil
		s.names = nil

		sampled, err := SampleWaypoints(route, s.cfg.IntervalMiles)
		if err != nil {
			s.failLocked("route geometry cannot be sampled", false)
			return fmt.Errorf("start resolution: %w", err)
		}

		projected, err := ProjectETAs(sampled, s.departAt, route.DurationSeconds, s.cfg.SpeedCorrectionFactor)
		if err != nil {
			s.failLocked("route duration cannot be projected", false)
			return fmt.Errorf("start resolution: %w", err)
		}
		s.waypoints = projected
	}

	s.cancelPassLocked()

	ctx, cancel := context.WithCancel(context.WithValue(s.epochCtx, obs.TripIDKey, s.ID))
	done := make(chan struct{})
	s.passCancel = cancel
	s.passDone = done
	s.state = StateWeatherLoading

	waypoints := make([]domain.Waypoint, len(s.waypoints))
	copy(waypoints, s.waypoints)

	var names []string
	if refresh && len(s.names) == len(waypoints) {
		names = s.names
	}

	go s.runPass(ctx, done, waypoints, names)
	return nil
}

func (s *TripSession) runPass(ctx context.Context, done chan struct{}, waypoints []domain.Waypoint, names []string) {
	defer close(done)

	kind := "initial"
	if names != nil {
		kind = "refresh"
	}

	var passErr error
	finish := obs.Time(ctx, "trip.resolutionPass."+kind)

	var (
		wg        sync.WaitGroup
		forecasts []ForecastResult
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		forecasts = s.deps.Forecasts.ResolveAll(ctx, waypoints)
	}()

	if names == nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names = s.deps.Places.Resolve(ctx, waypoints)
		}()
	}

	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		passErr = domain.ErrStaleRequest
		finish(&passErr)
		obs.ResolutionPasses.WithLabelValues(kind, "stale").Inc()
		return
	}

	// ETAs may have moved while the pass was in flight; take the latest ones.
	current := s.waypoints
	if len(current) != len(waypoints) {
		current = waypoints
	}

	resolved := make([]domain.ResolvedWaypoint, len(current))
	for i := range current {
		resolved[i] = domain.ResolvedWaypoint{
			Waypoint:     current[i],
			Weather:      forecasts[i].Weather,
			LocationName: names[i],
		}
	}

	s.resolved = resolved
	s.names = names
	s.summary = Summarize(resolved)
	s.state = StateWeatherReady
	s.errMsg = ""
	s.retryable = false
	s.updatedAt = s.cfg.Clock()

	if s.passDone == done {
		s.passDone = nil
		s.passCancel = nil
	}

	finish(&passErr)
	obs.ResolutionPasses.WithLabelValues(kind, "complete").Inc()
}

func (s *TripSession) newEpochLocked() {
	s.stopRefreshLocked()
	s.cancelPassLocked()
	s.epochCancel()
	s.epochCtx, s.epochCancel = context.WithCancel(context.Background())
}

func (s *TripSession) cancelPassLocked() {
	if s.passCancel != nil {
		s.passCancel()
	}
	s.passCancel = nil
	s.passDone = nil
}

func (s *TripSession) stopRefreshLocked() {
	if s.refreshCancel != nil {
		s.refreshCancel()
	}
	s.refreshCancel = nil
	s.autoRefresh = false
}

func (s *TripSession) clearRouteLocked() {
	s.candidates = nil
	s.selected = 0
	s.waypoints = nil
	s.names = nil
	s.resolved = nil
	s.summary = nil
	s.errMsg = ""
	s.retryable = false
}

func (s *TripSession) resetLocked() {
	s.newEpochLocked()
	s.clearRouteLocked()
	s.origin = nil
	s.destination = nil
	s.state = StateIdle
}

func (s *TripSession) failLocked(msg string, retryable bool) {
	s.state = StateError
	s.errMsg = msg
	s.retryable = retryable
	s.updatedAt = s.cfg.Clock()
}

func (s *TripSession) touchLocked() {
	s.lastActivity = s.cfg.Clock()
}
