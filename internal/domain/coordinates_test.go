package domain

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinates_Validate(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinates
		ok   bool
	}{
		{"flagstaff", Coordinates{Lat: 35.1983, Lon: -111.6513}, true},
		{"poles and antimeridian", Coordinates{Lat: -90, Lon: 180}, true},
		{"latitude too high", Coordinates{Lat: 90.0001, Lon: 0}, false},
		{"longitude too low", Coordinates{Lat: 0, Lon: -180.5}, false},
		{"nan", Coordinates{Lat: math.NaN(), Lon: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCoordinates_Key(t *testing.T) {
	c := Coordinates{Lat: 35.19831, Lon: -111.65127}
	if got := c.Key(2); got != "35.20,-111.65" {
		t.Fatalf("Key(2) = %q, want 35.20,-111.65", got)
	}
	if got := c.Key(4); got != "35.1983,-111.6513" {
		t.Fatalf("Key(4) = %q, want 35.1983,-111.6513", got)
	}
}

func TestGreatCircleMiles(t *testing.T) {
	// One degree of latitude along a meridian.
	got := GreatCircleMiles(Coordinates{Lat: 0, Lon: 0}, Coordinates{Lat: 1, Lon: 0})
	want := earthRadiusMiles * math.Pi / 180
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("GreatCircleMiles = %v, want %v", got, want)
	}

	a := Coordinates{Lat: 35.1983, Lon: -111.6513}
	b := Coordinates{Lat: 33.4484, Lon: -112.0740}
	if d1, d2 := GreatCircleMiles(a, b), GreatCircleMiles(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
	if d := GreatCircleMiles(a, a); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestRouteCandidate_Validate(t *testing.T) {
	pts := []Coordinates{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 0}}
	if err := (RouteCandidate{Geometry: pts, DistanceMeters: 1, DurationSeconds: 1}).Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	bad := []RouteCandidate{
		{Geometry: pts[:1], DistanceMeters: 1, DurationSeconds: 1},
		{Geometry: pts, DistanceMeters: -1, DurationSeconds: 1},
		{Geometry: pts, DistanceMeters: 1, DurationSeconds: -1},
	}
	for i, r := range bad {
		if err := r.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: Validate() = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestWeatherCodes(t *testing.T) {
	tests := []struct {
		code                 int
		precip, snow, severe bool
	}{
		{0, false, false, false},
		{51, true, false, false},
		{67, true, false, false},
		{71, false, true, false},
		{80, true, false, false},
		{86, false, true, false},
		{95, false, false, true},
		{99, false, false, true},
	}

	for _, tt := range tests {
		if IsPrecipitationCode(tt.code) != tt.precip || IsSnowCode(tt.code) != tt.snow || IsSevereCode(tt.code) != tt.severe {
			t.Fatalf("code %d: got %v/%v/%v, want %v/%v/%v", tt.code,
				IsPrecipitationCode(tt.code), IsSnowCode(tt.code), IsSevereCode(tt.code),
				tt.precip, tt.snow, tt.severe)
		}
	}
}

func TestCollaboratorError(t *testing.T) {
	base := errors.New("timeout")
	var err error = &CollaboratorError{Collaborator: "routing", Err: base}

	if !errors.Is(err, base) {
		t.Fatalf("CollaboratorError does not unwrap")
	}
	var ce *CollaboratorError
	if !errors.As(err, &ce) || !ce.Retryable() {
		t.Fatalf("expected retryable CollaboratorError")
	}
	if err.Error() != "routing: timeout" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
