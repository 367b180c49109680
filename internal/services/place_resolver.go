package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/platform/obs"
	"trip-weather-service/internal/ports"
)

// DefaultGeocodeStagger spaces reverse-geocoding requests to stay under
// the geocoder's rate limit.
const DefaultGeocodeStagger = 200 * time.Millisecond

// PlaceKeyDecimals rounds cache keys to roughly 100m.
const PlaceKeyDecimals = 3

// PlaceResolver turns waypoint coordinates into display names.
// It never fails: unresolved points get a coordinate-derived label.
type PlaceResolver struct {
	Geocoder ports.ReverseGeocoder
	Cache    ports.PlaceCache
	Stagger  time.Duration
}

func NewPlaceResolver(geocoder ports.ReverseGeocoder, cache ports.PlaceCache, stagger time.Duration) *PlaceResolver {
	return &PlaceResolver{Geocoder: geocoder, Cache: cache, Stagger: stagger}
}

// Resolve returns one name per waypoint, in waypoint order.
//
// Lookups are not fired at once: the i-th uncached lookup is delayed by
// i*Stagger before it is issued. Cached names are served without a request.
func (r *PlaceResolver) Resolve(ctx context.Context, waypoints []domain.Waypoint) []string {
	names := make([]string, len(waypoints))
	keys := make([]string, len(waypoints))
	for i, wp := range waypoints {
		keys[i] = wp.Coordinates.Key(PlaceKeyDecimals)
	}

	cached := map[string]string{}
	if r.Cache != nil {
		hits, err := r.Cache.GetMany(ctx, keys)
		if err != nil {
			log.Printf("place cache read failed: %v", err)
		} else {
			cached = hits
		}
	}

	misses := make([]int, 0, len(waypoints))
	for i := range waypoints {
		if name, ok := cached[keys[i]]; ok && name != "" {
			names[i] = name
			continue
		}
		misses = append(misses, i)
	}

	var (
		mu    sync.Mutex
		fresh = make(map[string]string, len(misses))
		wg    sync.WaitGroup
	)

	for slot, i := range misses {
		wg.Add(1)
		go func(delay time.Duration, i int) {
			defer wg.Done()

			name := r.lookup(ctx, delay, waypoints[i].Coordinates)
			mu.Lock()
			defer mu.Unlock()
			if name != "" {
				names[i] = name
				fresh[keys[i]] = name
				return
			}
			// A cancelled pass is discarded, so its misses are not fallbacks.
			if ctx.Err() == nil {
				obs.GeocodeFallbacks.Inc()
			}
			names[i] = FallbackPlaceName(waypoints[i].Coordinates)
		}(time.Duration(slot)*r.Stagger, i)
	}
	wg.Wait()

	if r.Cache != nil && len(fresh) > 0 && ctx.Err() == nil {
		if err := r.Cache.PutMany(ctx, fresh); err != nil {
			log.Printf("place cache write failed: %v", err)
		}
	}

	return names
}

func (r *PlaceResolver) lookup(ctx context.Context, delay time.Duration, at domain.Coordinates) string {
	if r.Geocoder == nil {
		return ""
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ""
		case <-timer.C:
		}
	}

	start := time.Now()
	addr, err := r.Geocoder.Reverse(ctx, at)
	obs.ObserveCollaborator("geocode", start, err)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("reverse geocode failed coord=%s err=%v", at.Key(4), err)
		}
		return ""
	}

	return FormatPlaceName(addr)
}

// FormatPlaceName picks the most specific populated-place field and appends
// the state, abbreviated for US states.
func FormatPlaceName(addr domain.Address) string {
	candidates := []string{
		addr.City,
		addr.Town,
		addr.Village,
		addr.Hamlet,
		addr.Municipality,
		addr.Suburb,
		addr.County,
		addr.Road,
	}

	name := ""
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			name = c
			break
		}
	}
	if name == "" {
		return ""
	}

	state := strings.TrimSpace(addr.State)
	if state == "" {
		return name
	}

	cc := strings.ToLower(strings.TrimSpace(addr.CountryCode))
	if cc == "" || cc == "us" {
		if abbr, ok := usStateAbbreviations[strings.ToLower(state)]; ok {
			state = abbr
		}
	}

	return name + ", " + state
}

// FallbackPlaceName labels a coordinate that could not be geocoded.
func FallbackPlaceName(c domain.Coordinates) string {
	return fmt.Sprintf("Near %.2f, %.2f", c.Lat, c.Lon)
}

var usStateAbbreviations = map[string]string{
	"alabama":              "AL",
	"alaska":               "AK",
	"arizona":              "AZ",
	"arkansas":             "AR",
	"california":           "CA",
	"colorado":             "CO",
	"connecticut":          "CT",
	"delaware":             "DE",
	"district of columbia": "DC",
	"florida":              "FL",
	"georgia":              "GA",
	"hawaii":               "HI",
	"idaho":                "ID",
	"illinois":             "IL",
	"indiana":              "IN",
	"iowa":                 "IA",
	"kansas":               "KS",
	"kentucky":             "KY",
	"louisiana":            "LA",
	"maine":                "ME",
	"maryland":             "MD",
	"massachusetts":        "MA",
	"michigan":             "MI",
	"minnesota":            "MN",
	"mississippi":          "MS",
	"missouri":             "MO",
	"montana":              "MT",
	"nebraska":             "NE",
	"nevada":               "NV",
	"new hampshire":        "NH",
	"new jersey":           "NJ",
	"new mexico":           "NM",
	"new york":             "NY",
	"north carolina":       "NC",
	"north dakota":         "ND",
	"ohio":                 "OH",
	"oklahoma":             "OK",
	"oregon":               "OR",
	"pennsylvania":         "PA",
	"rhode island":         "RI",
	"south carolina":       "SC",
	"south dakota":         "SD",
	"tennessee":            "TN",
	"texas":                "TX",
	"utah":                 "UT",
	"vermont":              "VT",
	"virginia":             "VA",
	"washington":           "WA",
	"west virginia":        "WV",
	"wisconsin":            "WI",
	"wyoming":              "WY",
	"puerto rico":          "PR",
}
