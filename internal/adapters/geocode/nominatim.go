package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"trip-weather-service/internal/domain"
)

// NominatimClient implements ReverseGeocoder against a Nominatim server.
// Nominatim requires an identifying User-Agent and allows about one
// request per second; callers space their requests.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewNominatimClient(baseURL, userAgent string) *NominatimClient {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if userAgent == "" {
		userAgent = "trip-weather-service/1.0"
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type reverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Hamlet       string `json:"hamlet"`
		Municipality string `json:"municipality"`
		Suburb       string `json:"suburb"`
		County       string `json:"county"`
		Road         string `json:"road"`
		State        string `json:"state"`
		CountryCode  string `json:"country_code"`
	} `json:"address"`
}

func (c *NominatimClient) Reverse(ctx context.Context, at domain.Coordinates) (domain.Address, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', 5, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', 5, 64))
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return domain.Address{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Address{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Address{}, fmt.Errorf("reverse geocoding API returned status %d", resp.StatusCode)
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Address{}, fmt.Errorf("decode reverse geocode response: %w", err)
	}
	if decoded.Error != "" {
		return domain.Address{}, errors.New("reverse geocode: " + decoded.Error)
	}

	a := decoded.Address
	return domain.Address{
		City:         a.City,
		Town:         a.Town,
		Village:      a.Village,
		Hamlet:       a.Hamlet,
		Municipality: a.Municipality,
		Suburb:       a.Suburb,
		County:       a.County,
		Road:         a.Road,
		State:        a.State,
		CountryCode:  a.CountryCode,
	}, nil
}
