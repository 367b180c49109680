package routing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/platform/obs"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Search resolves free-form text to the best matching coordinate using
// OpenRouteService (/geocode/search). It backs destination search, so the
// absence of a match is reported as invalid input.
func (o *ORSRouteProvider) Search(ctx context.Context, text string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.geocodeSearch")(&err)

	norm := strings.Join(strings.Fields(text), " ")
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode search: %w: empty query", domain.ErrInvalidInput)
	}

	req, err := o.newRequest(ctx, http.MethodGet, o.baseURL+"/geocode/search", nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode search: %w", err)
	}
	q := req.URL.Query()
	q.Set("text", norm)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := o.do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode search: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode search: read response: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode search: decode response: %w", err)
	}
	if len(fc.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode search: %w: no results for %q", domain.ErrInvalidInput, norm)
	}

	pt, ok := fc.Features[0].Geometry.(orb.Point)
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("geocode search: unexpected geometry %T for %q", fc.Features[0].Geometry, norm)
	}

	c := domain.Coordinates{Lon: pt.Lon(), Lat: pt.Lat()}
	if err := c.Validate(); err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode search: %w", err)
	}
	return c, nil
}
