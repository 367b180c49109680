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

// Outcome of one waypoint's forecast lookup. Weather is nil when Err is set.
type ForecastResult struct {
	Weather *domain.WeatherSnapshot
	Err     error
}

func (r ForecastResult) Success() bool { return r.Err == nil && r.Weather != nil }

// ForecastResolver joins each waypoint with the forecast valid at its ETA.
type ForecastResolver struct {
	Provider ports.ForecastProvider
}

func NewForecastResolver(provider ports.ForecastProvider) *ForecastResolver {
	return &ForecastResolver{Provider: provider}
}

// SelectAtETA picks the first hourly record at or after the ETA truncated
// to the hour. When the ETA lies beyond the hourly horizon the current
// conditions are returned instead, flagged as non-forecast.
func SelectAtETA(f domain.Forecast, eta time.Time) (*domain.WeatherSnapshot, error) {
	hour := eta.UTC().Truncate(time.Hour)

	for i := range f.Hourly {
		if !f.Hourly[i].Time.Before(hour) {
			snap := f.Hourly[i]
			snap.IsForecast = true
			return &snap, nil
		}
	}

	if f.Current == nil {
		return nil, errors.New("select forecast: eta beyond hourly horizon and no current conditions")
	}

	snap := *f.Current
	snap.IsForecast = false
	return &snap, nil
}

// Resolve fetches the forecast for one waypoint and selects the record for its ETA.
func (r *ForecastResolver) Resolve(ctx context.Context, wp domain.Waypoint) (*domain.WeatherSnapshot, error) {
	if r.Provider == nil {
		return nil, errors.New("resolve forecast: provider is nil")
	}

	start := time.Now()
	f, err := r.Provider.Forecast(ctx, wp.Coordinates)
	obs.ObserveCollaborator("forecast", start, err)
	if err != nil {
		return nil, &domain.CollaboratorError{Collaborator: "forecast", Err: err}
	}

	snap, err := SelectAtETA(f, wp.ETATime)
	if err != nil {
		return nil, fmt.Errorf("resolve forecast %s: %w", wp.Label, err)
	}
	return snap, nil
}

// ResolveAll issues every waypoint's lookup concurrently and returns once all
// of them have settled. Results are indexed like waypoints; a failed lookup
// only affects its own slot.
func (r *ForecastResolver) ResolveAll(ctx context.Context, waypoints []domain.Waypoint) []ForecastResult {
	type indexed struct {
		i   int
		res ForecastResult
	}

	resultsCh := make(chan indexed, len(waypoints))
	var wg sync.WaitGroup

	for i, wp := range waypoints {
		wg.Add(1)
		go func(i int, wp domain.Waypoint) {
			defer wg.Done()

			snap, err := r.Resolve(ctx, wp)
			resultsCh <- indexed{i: i, res: ForecastResult{Weather: snap, Err: err}}
		}(i, wp)
	}

	wg.Wait()
	close(resultsCh)

	out := make([]ForecastResult, len(waypoints))
	for res := range resultsCh {
		if res.res.Err != nil && ctx.Err() == nil {
			obs.WaypointForecastFailures.Inc()
			log.Printf("forecast unavailable waypoint=%q err=%v", waypoints[res.i].Label, res.res.Err)
		}
		out[res.i] = res.res
	}

	return out
}
