package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"trip-weather-service/internal/adapters/forecast"
	"trip-weather-service/internal/domain"
)

func hourlyForecast(start time.Time, hours int, current *domain.WeatherSnapshot) domain.Forecast {
	f := domain.Forecast{Current: current}
	for h := 0; h < hours; h++ {
		f.Hourly = append(f.Hourly, domain.WeatherSnapshot{
			Time:        start.Add(time.Duration(h) * time.Hour),
			Temperature: ptr(50 + float64(h)),
		})
	}
	return f
}

func TestSelectAtETA_TruncatesToHour(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	f := hourlyForecast(start, 24, nil)

	snap, err := SelectAtETA(f, time.Date(2025, 3, 10, 9, 47, 15, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *snap.Temperature != 59 {
		t.Fatalf("temperature = %v, want 59 (the 09:00 record)", *snap.Temperature)
	}
	if !snap.IsForecast {
		t.Fatalf("expected forecast record")
	}
}

func TestSelectAtETA_NonUTCETA(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	f := hourlyForecast(start, 24, nil)
	// 05:30 at UTC-7 is 12:30 UTC.
	eta := time.Date(2025, 3, 10, 5, 30, 0, 0, time.FixedZone("MST", -7*3600))

	snap, err := SelectAtETA(f, eta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Time.Equal(start.Add(12 * time.Hour)) {
		t.Fatalf("selected %v, want 12:00 UTC", snap.Time)
	}
}

func TestSelectAtETA_FallsBackToCurrent(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	current := &domain.WeatherSnapshot{Time: start, Temperature: ptr(40.0), IsForecast: true}
	f := hourlyForecast(start, 3, current)

	snap, err := SelectAtETA(f, start.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.IsForecast {
		t.Fatalf("fallback snapshot must not be flagged as forecast")
	}
	if *snap.Temperature != 40 {
		t.Fatalf("temperature = %v, want 40 (current)", *snap.Temperature)
	}
	if !current.IsForecast {
		t.Fatalf("provider's current snapshot was modified")
	}
}

func TestSelectAtETA_NoDataIsError(t *testing.T) {
	f := hourlyForecast(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 2, nil)

	if _, err := SelectAtETA(f, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Fatalf("expected error without hourly match or current conditions")
	}
}

func TestResolveAll_IsolatesFailures(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := forecast.NewMockForecastProvider(hourlyForecast(start, 48, nil))

	wps := []domain.Waypoint{
		{Label: "Start", Coordinates: domain.Coordinates{Lat: 33.4, Lon: -112.1}, ETATime: start},
		{Label: "Mile 50", Coordinates: domain.Coordinates{Lat: 33.9, Lon: -112.5}, ETATime: start.Add(time.Hour)},
		{Label: "Mile 100", Coordinates: domain.Coordinates{Lat: 34.5, Lon: -112.4}, ETATime: start.Add(2 * time.Hour)},
		{Label: "Destination", Coordinates: domain.Coordinates{Lat: 35.2, Lon: -111.7}, ETATime: start.Add(3 * time.Hour)},
	}
	provider.Fail[forecast.MockKey(wps[2].Coordinates)] = errors.New("connection reset")

	results := NewForecastResolver(provider).ResolveAll(context.Background(), wps)

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, res := range results {
		if i == 2 {
			if res.Success() || res.Weather != nil {
				t.Fatalf("waypoint 2 should fail, got %+v", res)
			}
			var collab *domain.CollaboratorError
			if !errors.As(res.Err, &collab) || collab.Collaborator != "forecast" {
				t.Fatalf("waypoint 2 err = %v, want forecast CollaboratorError", res.Err)
			}
			continue
		}
		if !res.Success() {
			t.Fatalf("waypoint %d failed: %v", i, res.Err)
		}
		if want := 50 + float64(i); *res.Weather.Temperature != want {
			t.Fatalf("waypoint %d temperature = %v, want %v", i, *res.Weather.Temperature, want)
		}
	}
	if provider.Calls() != 4 {
		t.Fatalf("provider calls = %d, want 4", provider.Calls())
	}
}

func TestResolveAll_CancelledContext(t *testing.T) {
	provider := forecast.NewMockForecastProvider(domain.Forecast{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewForecastResolver(provider).ResolveAll(ctx, []domain.Waypoint{{Label: "Start"}, {Label: "Destination"}})
	for i, res := range results {
		if res.Success() {
			t.Fatalf("waypoint %d succeeded under a cancelled context", i)
		}
	}
}
