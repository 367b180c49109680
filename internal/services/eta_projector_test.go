package services

import (
	"errors"
	"testing"
	"time"
	"trip-weather-service/internal/domain"
)

func TestProjectETAs_HalfwayPoint(t *testing.T) {
	depart := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	wps := []domain.Waypoint{
		{Label: "Start", RouteProgress: 0},
		{Label: "Mile 50", RouteProgress: 0.5},
		{Label: "Destination", RouteProgress: 1},
	}

	got, err := ProjectETAs(wps, depart, 7200, 1.27)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 7200 / 1.27 = 5669.29s; half of that rounds to 2835s.
	if got[1].ETASeconds != 2835 {
		t.Fatalf("eta seconds = %d, want 2835", got[1].ETASeconds)
	}
	want := time.Date(2024, 1, 1, 8, 47, 15, 0, time.UTC)
	if !got[1].ETATime.Equal(want) {
		t.Fatalf("eta time = %v, want %v", got[1].ETATime, want)
	}
	if got[0].ETASeconds != 0 || !got[0].ETATime.Equal(depart) {
		t.Fatalf("start eta = %d/%v, want 0/%v", got[0].ETASeconds, got[0].ETATime, depart)
	}
	if got[2].ETASeconds != 5669 {
		t.Fatalf("destination eta = %d, want 5669", got[2].ETASeconds)
	}
}

func TestProjectETAs_DoesNotMutateInput(t *testing.T) {
	wps := []domain.Waypoint{{RouteProgress: 0.5, ETASeconds: 42}}

	if _, err := ProjectETAs(wps, time.Now(), 1000, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wps[0].ETASeconds != 42 {
		t.Fatalf("input was modified: eta = %d, want 42", wps[0].ETASeconds)
	}
}

func TestProjectETAs_Idempotent(t *testing.T) {
	depart := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	wps := []domain.Waypoint{{RouteProgress: 0}, {RouteProgress: 0.37}, {RouteProgress: 1}}

	a, err := ProjectETAs(wps, depart, 12345, DefaultSpeedCorrectionFactor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ProjectETAs(a, depart, 12345, DefaultSpeedCorrectionFactor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a {
		if !a[i].ETATime.Equal(b[i].ETATime) {
			t.Fatalf("waypoint %d eta %v != %v", i, a[i].ETATime, b[i].ETATime)
		}
	}
}

func TestProjectETAs_LargerFactorIsEarlier(t *testing.T) {
	depart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	wps := []domain.Waypoint{{RouteProgress: 0.1}, {RouteProgress: 0.5}, {RouteProgress: 1}}

	slow, err := ProjectETAs(wps, depart, 36000, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fast, err := ProjectETAs(wps, depart, 36000, 1.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range wps {
		if fast[i].ETASeconds >= slow[i].ETASeconds {
			t.Fatalf("waypoint %d: factor 1.5 eta %d not below factor 1.0 eta %d", i, fast[i].ETASeconds, slow[i].ETASeconds)
		}
	}
}

func TestProjectETAs_RejectsInvalidParameters(t *testing.T) {
	wps := []domain.Waypoint{{RouteProgress: 1}}

	if _, err := ProjectETAs(wps, time.Now(), 100, 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero factor err = %v, want ErrInvalidInput", err)
	}
	if _, err := ProjectETAs(wps, time.Now(), -1, 1.27); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("negative duration err = %v, want ErrInvalidInput", err)
	}
}
