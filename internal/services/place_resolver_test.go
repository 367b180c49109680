package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
	"trip-weather-service/internal/adapters/geocode"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/platform/obs"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type memoryPlaceCache struct {
	mu    sync.Mutex
	names map[string]string
	puts  int
}

func (c *memoryPlaceCache) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]string{}
	for _, k := range keys {
		if n, ok := c.names[k]; ok {
			out[k] = n
		}
	}
	return out, nil
}

func (c *memoryPlaceCache) PutMany(ctx context.Context, names map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	for k, n := range names {
		c.names[k] = n
	}
	return nil
}

func waypointsAt(coords ...domain.Coordinates) []domain.Waypoint {
	wps := make([]domain.Waypoint, len(coords))
	for i, c := range coords {
		wps[i] = domain.Waypoint{Coordinates: c}
	}
	return wps
}

func TestFormatPlaceName(t *testing.T) {
	tests := []struct {
		name string
		addr domain.Address
		want string
	}{
		{"city with us state", domain.Address{City: "Flagstaff", State: "Arizona", CountryCode: "us"}, "Flagstaff, AZ"},
		{"town preferred over county", domain.Address{Town: "Williams", County: "Coconino County", State: "Arizona"}, "Williams, AZ"},
		{"village", domain.Address{Village: "Valle", State: "Arizona"}, "Valle, AZ"},
		{"hamlet", domain.Address{Hamlet: "Parks", State: "Arizona"}, "Parks, AZ"},
		{"road only", domain.Address{Road: "Interstate 40"}, "Interstate 40"},
		{"county before road", domain.Address{County: "Yavapai County", Road: "I-17", State: "Arizona"}, "Yavapai County, AZ"},
		{"non-us state kept", domain.Address{City: "Calgary", State: "Alberta", CountryCode: "ca"}, "Calgary, Alberta"},
		{"unknown us state kept", domain.Address{City: "Somewhere", State: "Atlantis"}, "Somewhere, Atlantis"},
		{"nothing usable", domain.Address{State: "Arizona"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPlaceName(tt.addr); got != tt.want {
				t.Fatalf("FormatPlaceName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaceResolver_FallbackNeverFails(t *testing.T) {
	a := domain.Coordinates{Lat: 35.1983, Lon: -111.6513}
	b := domain.Coordinates{Lat: 34.5400, Lon: -112.4685}

	geo := geocode.NewMockGeocoder(map[string]domain.Address{
		a.Key(4): {City: "Flagstaff", State: "Arizona"},
	})
	names := NewPlaceResolver(geo, nil, 0).Resolve(context.Background(), waypointsAt(a, b))

	if names[0] != "Flagstaff, AZ" {
		t.Fatalf("names[0] = %q, want Flagstaff, AZ", names[0])
	}
	if names[1] != "Near 34.54, -112.47" {
		t.Fatalf("names[1] = %q, want Near 34.54, -112.47", names[1])
	}
}

func TestPlaceResolver_CountsFallbacks(t *testing.T) {
	geo := geocode.NewMockGeocoder(nil)
	at := domain.Coordinates{Lat: 34.54, Lon: -112.4685}

	before := testutil.ToFloat64(obs.GeocodeFallbacks)
	NewPlaceResolver(geo, nil, 0).Resolve(context.Background(), waypointsAt(at))
	if got := testutil.ToFloat64(obs.GeocodeFallbacks) - before; got != 1 {
		t.Fatalf("fallbacks counted = %v, want 1", got)
	}

	// Names from an abandoned pass are thrown away and not counted.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before = testutil.ToFloat64(obs.GeocodeFallbacks)
	names := NewPlaceResolver(geo, nil, 10*time.Millisecond).Resolve(ctx, waypointsAt(at, at, at))
	if got := testutil.ToFloat64(obs.GeocodeFallbacks) - before; got != 0 {
		t.Fatalf("fallbacks counted for a cancelled pass = %v, want 0", got)
	}
	if len(names) != 3 {
		t.Fatalf("len(names) = %d, want 3", len(names))
	}
}

func TestPlaceResolver_GeocoderErrorsFallBack(t *testing.T) {
	geo := geocode.NewMockGeocoder(nil)
	geo.Err = errors.New("429 too many requests")

	names := NewPlaceResolver(geo, nil, 0).Resolve(context.Background(), waypointsAt(domain.Coordinates{Lat: 1.005, Lon: 2.004}))
	if names[0] != FallbackPlaceName(domain.Coordinates{Lat: 1.005, Lon: 2.004}) {
		t.Fatalf("names[0] = %q, want fallback", names[0])
	}
}

func TestPlaceResolver_StaggersRequests(t *testing.T) {
	const stagger = 20 * time.Millisecond

	coords := []domain.Coordinates{
		{Lat: 33.0, Lon: -112.0},
		{Lat: 33.5, Lon: -112.0},
		{Lat: 34.0, Lon: -112.0},
		{Lat: 34.5, Lon: -112.0},
	}
	addrs := map[string]domain.Address{}
	for _, c := range coords {
		addrs[c.Key(4)] = domain.Address{Town: "T", State: "Arizona"}
	}
	geo := geocode.NewMockGeocoder(addrs)

	start := time.Now()
	NewPlaceResolver(geo, nil, stagger).Resolve(context.Background(), waypointsAt(coords...))

	issued := geo.IssuedAt()
	if len(issued) != len(coords) {
		t.Fatalf("issued %d requests, want %d", len(issued), len(coords))
	}
	sort.Slice(issued, func(i, j int) bool { return issued[i].Before(issued[j]) })
	for k, at := range issued {
		if at.Sub(start) < time.Duration(k)*stagger {
			t.Fatalf("request %d issued after %v, want at least %v", k, at.Sub(start), time.Duration(k)*stagger)
		}
	}
}

func TestPlaceResolver_UsesCache(t *testing.T) {
	a := domain.Coordinates{Lat: 35.1983, Lon: -111.6513}
	b := domain.Coordinates{Lat: 34.5400, Lon: -112.4685}

	cache := &memoryPlaceCache{names: map[string]string{a.Key(PlaceKeyDecimals): "Flagstaff, AZ"}}
	geo := geocode.NewMockGeocoder(map[string]domain.Address{
		b.Key(4): {City: "Prescott", State: "Arizona"},
	})
	r := NewPlaceResolver(geo, cache, 0)

	names := r.Resolve(context.Background(), waypointsAt(a, b))
	if names[0] != "Flagstaff, AZ" || names[1] != "Prescott, AZ" {
		t.Fatalf("names = %q, want Flagstaff, AZ and Prescott, AZ", names)
	}
	if geo.Calls() != 1 {
		t.Fatalf("geocoder calls = %d, want 1 (cached name served locally)", geo.Calls())
	}
	if cache.names[b.Key(PlaceKeyDecimals)] != "Prescott, AZ" {
		t.Fatalf("resolved name not written to cache: %v", cache.names)
	}

	r.Resolve(context.Background(), waypointsAt(a, b))
	if geo.Calls() != 1 {
		t.Fatalf("geocoder calls after second resolve = %d, want 1", geo.Calls())
	}
}

func TestPlaceResolver_FallbackNotCached(t *testing.T) {
	cache := &memoryPlaceCache{names: map[string]string{}}
	geo := geocode.NewMockGeocoder(nil)

	NewPlaceResolver(geo, cache, 0).Resolve(context.Background(), waypointsAt(domain.Coordinates{Lat: 10, Lon: 10}))
	if len(cache.names) != 0 || cache.puts != 0 {
		t.Fatalf("fallback labels must not be cached: %v", cache.names)
	}
}
