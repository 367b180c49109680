package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"trip-weather-service/internal/adapters/routing"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/services"
)

func TestResolvePoint(t *testing.T) {
	search := &routing.MockPlaceSearcher{Places: map[string]domain.Coordinates{
		"flagstaff, az": {Lat: 35.1983, Lon: -111.6513},
	}}

	c, err := resolvePoint(context.Background(), search, " 33.45, -112.07 ")
	if err != nil || c.Lat != 33.45 || c.Lon != -112.07 {
		t.Fatalf("resolvePoint(coords) = %+v, %v", c, err)
	}

	c, err = resolvePoint(context.Background(), search, "Flagstaff, AZ")
	if err != nil || c.Lat != 35.1983 {
		t.Fatalf("resolvePoint(address) = %+v, %v", c, err)
	}

	if _, err := resolvePoint(context.Background(), search, "95,10"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("out of range err = %v, want ErrInvalidInput", err)
	}
}

func TestPrintReport(t *testing.T) {
	eta := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	temp, wind, code := 41.0, 12.0, 71

	v := services.TripView{
		Routes: []services.RouteOption{{DistanceMeters: 50 * domain.MetersPerMile, DurationSeconds: 3600, Selected: true}},
		Waypoints: []domain.ResolvedWaypoint{
			{
				Waypoint:     domain.Waypoint{Label: "Start", ETATime: eta},
				LocationName: "Flagstaff, AZ",
				Weather:      &domain.WeatherSnapshot{Temperature: &temp, WindSpeed: &wind, WeatherCode: &code, IsForecast: true},
			},
			{Waypoint: domain.Waypoint{Label: "Destination", DistanceFromStartMiles: 50, ETATime: eta.Add(time.Hour)}, LocationName: "Near 35.00, -111.00"},
		},
		Summary: &domain.TripSummary{SnowCount: 1, HasSnow: true, WaypointsWithWeather: 1},
	}

	var buf bytes.Buffer
	printReport(&buf, v)
	out := buf.String()

	for _, want := range []string{"Route: 50 mi", "Flagstaff, AZ", "41°", "snow", "unavailable", "snow at 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}
