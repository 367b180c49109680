package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/platform/obs"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ORS only serves alternative routes for trips up to 100 km.
const orsAlternativesLimitMiles = 100 / 1.609344

// ORSRouteProvider implements RouteProvider using the OpenRouteService
// directions endpoint in GeoJSON form.
//
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	country string
}

func NewORSRouteProvider(apiKey, baseURL string) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	return &ORSRouteProvider{
		session: &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving-car",
		country: "US",
	}, nil
}

type alternativeRoutes struct {
	TargetCount  int     `json:"target_count"`
	WeightFactor float64 `json:"weight_factor"`
	ShareFactor  float64 `json:"share_factor"`
}

type directionsRequest struct {
	Coordinates       [][]float64        `json:"coordinates"`
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
	Instructions      bool               `json:"instructions"`
}

// Routes returns the best route first, followed by alternatives when the
// trip is short enough for ORS to compute them.
func (o *ORSRouteProvider) Routes(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
	alternatives int,
) (_ []domain.RouteCandidate, err error) {
	defer obs.Time(ctx, "ors.Routes")(&err)

	body := directionsRequest{
		Coordinates: [][]float64{origin.CoordsToList(), destination.CoordsToList()},
	}
	if alternatives > 1 && domain.GreatCircleMiles(origin, destination) <= orsAlternativesLimitMiles {
		body.AlternativeRoutes = &alternativeRoutes{
			TargetCount:  alternatives,
			WeightFactor: 1.4,
			ShareFactor:  0.6,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)
	req, err := o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}

	resp, err := o.do(req)
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.noRoute() {
			return []domain.RouteCandidate{}, nil
		}
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read directions response: %w", err)
	}

	return decodeDirections(raw)
}

func decodeDirections(raw []byte) ([]domain.RouteCandidate, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	out := make([]domain.RouteCandidate, 0, len(fc.Features))
	for i, f := range fc.Features {
		line, ok := f.Geometry.(orb.LineString)
		if !ok {
			return nil, fmt.Errorf("directions feature %d: expected LineString, got %T", i, f.Geometry)
		}

		geometry := make([]domain.Coordinates, 0, len(line))
		for _, p := range line {
			geometry = append(geometry, domain.Coordinates{Lon: p.Lon(), Lat: p.Lat()})
		}

		candidate := domain.RouteCandidate{Geometry: geometry}
		if summary, ok := f.Properties["summary"].(map[string]interface{}); ok {
			candidate.DistanceMeters, _ = summary["distance"].(float64)
			candidate.DurationSeconds, _ = summary["duration"].(float64)
		}

		out = append(out, candidate)
	}

	return out, nil
}
