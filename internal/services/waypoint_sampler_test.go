package services

import (
	"errors"
	"math/rand"
	"testing"
	"trip-weather-service/internal/domain"
)

func TestSampleWaypoints_TwoHundredMiles(t *testing.T) {
	route := northboundRoute(200, 200, 4*3600)

	wps, err := SampleWaypoints(route, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLabels := []string{"Start", "Mile 50", "Mile 100", "Mile 150", "Destination"}
	wantMiles := []int{0, 50, 100, 150, 200}
	if len(wps) != len(wantLabels) {
		t.Fatalf("expected %d waypoints, got %d: %+v", len(wantLabels), len(wps), wps)
	}
	for i, wp := range wps {
		if wp.Label != wantLabels[i] {
			t.Fatalf("waypoint %d label = %q, want %q", i, wp.Label, wantLabels[i])
		}
		if wp.DistanceFromStartMiles != wantMiles[i] {
			t.Fatalf("waypoint %d miles = %d, want %d", i, wp.DistanceFromStartMiles, wantMiles[i])
		}
	}
	if wps[0].RouteProgress != 0 || wps[4].RouteProgress != 1 {
		t.Fatalf("progress = %v..%v, want 0..1", wps[0].RouteProgress, wps[4].RouteProgress)
	}
	if wps[2].VertexIndex != 100 || wps[2].RouteProgress != 0.5 {
		t.Fatalf("middle waypoint = vertex %d progress %v, want vertex 100 progress 0.5", wps[2].VertexIndex, wps[2].RouteProgress)
	}
}

func TestSampleWaypoints_AppendsDistantDestination(t *testing.T) {
	route := northboundRoute(230, 230, 0)

	wps, err := SampleWaypoints(route, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wps) != 6 {
		t.Fatalf("expected 6 waypoints, got %d", len(wps))
	}
	if wps[4].Label != "Mile 200" {
		t.Fatalf("waypoint 4 label = %q, want Mile 200", wps[4].Label)
	}
	last := wps[5]
	if last.Label != domain.LabelDestination || last.DistanceFromStartMiles != 230 || last.VertexIndex != 230 {
		t.Fatalf("destination = %+v, want label Destination at mile 230 vertex 230", last)
	}
}

func TestSampleWaypoints_MergesNearbyDestination(t *testing.T) {
	// 205 segments: the Mile 200 point is 5 miles short and is folded.
	route := northboundRoute(205, 205, 0)

	wps, err := SampleWaypoints(route, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wps) != 5 {
		t.Fatalf("expected 5 waypoints, got %d", len(wps))
	}
	last := wps[4]
	if last.Label != domain.LabelDestination {
		t.Fatalf("last label = %q, want Destination", last.Label)
	}
	if last.RouteProgress != 1 || last.DistanceFromStartMiles != 205 {
		t.Fatalf("last = progress %v miles %d, want 1 and 205", last.RouteProgress, last.DistanceFromStartMiles)
	}
	if last.VertexIndex != 200 {
		t.Fatalf("last vertex = %d, want 200 (relabelled in place)", last.VertexIndex)
	}
}

func TestSampleWaypoints_ShortRouteHasStartAndDestination(t *testing.T) {
	route := northboundRoute(1, 12, 900)

	wps, err := SampleWaypoints(route, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wps) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(wps))
	}
	if wps[0].Label != domain.LabelStart || wps[1].Label != domain.LabelDestination {
		t.Fatalf("labels = %q,%q, want Start,Destination", wps[0].Label, wps[1].Label)
	}
	if wps[1].DistanceFromStartMiles != 12 {
		t.Fatalf("destination miles = %d, want 12", wps[1].DistanceFromStartMiles)
	}
}

func TestSampleWaypoints_ExactMultipleOfInterval(t *testing.T) {
	// k=3 intervals: three interior emissions, the last folded into the destination.
	route := northboundRoute(150, 150, 0)

	wps, err := SampleWaypoints(route, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(wps) != 4 {
		t.Fatalf("expected 4 waypoints, got %d", len(wps))
	}
	if wps[3].Label != domain.LabelDestination || wps[3].VertexIndex != 150 {
		t.Fatalf("last = %+v, want Destination at vertex 150", wps[3])
	}
}

func TestSampleWaypoints_RejectsDegenerateInput(t *testing.T) {
	tests := []struct {
		name     string
		route    domain.RouteCandidate
		interval float64
	}{
		{"empty geometry", domain.RouteCandidate{}, 50},
		{"single point", domain.RouteCandidate{Geometry: []domain.Coordinates{{Lat: 1, Lon: 1}}}, 50},
		{"zero interval", northboundRoute(3, 3, 0), 0},
		{"negative interval", northboundRoute(3, 3, 0), -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SampleWaypoints(tt.route, tt.interval)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSampleWaypoints_ProgressBoundsAndOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.Intn(60)
		geom := make([]domain.Coordinates, n)
		lat, lon := 35.0, -110.0
		for i := range geom {
			lat += (rng.Float64() - 0.3) * 0.8
			lon += (rng.Float64() - 0.3) * 0.8
			geom[i] = domain.Coordinates{Lat: lat, Lon: lon}
		}
		route := domain.RouteCandidate{
			Geometry:       geom,
			DistanceMeters: rng.Float64() * 800 * domain.MetersPerMile,
		}
		interval := 1 + rng.Float64()*80

		wps, err := SampleWaypoints(route, interval)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		if len(wps) < 2 {
			t.Fatalf("trial %d: expected at least 2 waypoints, got %d", trial, len(wps))
		}
		if wps[0].RouteProgress != 0 || wps[0].Label != domain.LabelStart {
			t.Fatalf("trial %d: first = %+v, want Start at progress 0", trial, wps[0])
		}
		last := wps[len(wps)-1]
		if last.RouteProgress != 1 || last.Label != domain.LabelDestination {
			t.Fatalf("trial %d: last = %+v, want Destination at progress 1", trial, last)
		}
		for i := 1; i < len(wps); i++ {
			if wps[i].RouteProgress < wps[i-1].RouteProgress {
				t.Fatalf("trial %d: progress decreases at %d: %v < %v", trial, i, wps[i].RouteProgress, wps[i-1].RouteProgress)
			}
		}
	}
}
