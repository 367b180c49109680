package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"trip-weather-service/internal/domain"
)

const variables = "temperature_2m,apparent_temperature,weather_code,wind_speed_10m,wind_gusts_10m," +
	"wind_direction_10m,relative_humidity_2m,precipitation,pressure_msl"

type httpStatusError struct {
	status int
	body   string
}

func (e httpStatusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("API returned status %d", e.status)
	}
	return fmt.Sprintf("API returned status %d: %s", e.status, e.body)
}

// OpenMeteoClient implements ForecastProvider against the Open-Meteo
// forecast API. Timestamps are requested as unix seconds in UTC.
type OpenMeteoClient struct {
	baseURL         string
	temperatureUnit string
	windSpeedUnit   string
	forecastDays    int
	httpClient      *http.Client
}

type Options struct {
	BaseURL         string
	TemperatureUnit string
	WindSpeedUnit   string
	ForecastDays    int
	HTTPClient      *http.Client
}

func NewOpenMeteoClient(opts Options) *OpenMeteoClient {
	c := &OpenMeteoClient{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		temperatureUnit: opts.TemperatureUnit,
		windSpeedUnit:   opts.WindSpeedUnit,
		forecastDays:    opts.ForecastDays,
		httpClient:      opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.open-meteo.com"
	}
	if c.temperatureUnit == "" {
		c.temperatureUnit = "fahrenheit"
	}
	if c.windSpeedUnit == "" {
		c.windSpeedUnit = "mph"
	}
	if c.forecastDays <= 0 {
		c.forecastDays = 7
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c
}

type hourlyBlock struct {
	Time                []int64    `json:"time"`
	Temperature         []*float64 `json:"temperature_2m"`
	ApparentTemperature []*float64 `json:"apparent_temperature"`
	WeatherCode         []*float64 `json:"weather_code"`
	WindSpeed           []*float64 `json:"wind_speed_10m"`
	WindGusts           []*float64 `json:"wind_gusts_10m"`
	WindDirection       []*float64 `json:"wind_direction_10m"`
	Humidity            []*float64 `json:"relative_humidity_2m"`
	Precipitation       []*float64 `json:"precipitation"`
	Pressure            []*float64 `json:"pressure_msl"`
}

type currentBlock struct {
	Time                int64    `json:"time"`
	Temperature         *float64 `json:"temperature_2m"`
	ApparentTemperature *float64 `json:"apparent_temperature"`
	WeatherCode         *float64 `json:"weather_code"`
	WindSpeed           *float64 `json:"wind_speed_10m"`
	WindGusts           *float64 `json:"wind_gusts_10m"`
	WindDirection       *float64 `json:"wind_direction_10m"`
	Humidity            *float64 `json:"relative_humidity_2m"`
	Precipitation       *float64 `json:"precipitation"`
	Pressure            *float64 `json:"pressure_msl"`
}

type forecastResponse struct {
	Hourly  *hourlyBlock  `json:"hourly"`
	Current *currentBlock `json:"current"`
}

func (c *OpenMeteoClient) Forecast(ctx context.Context, at domain.Coordinates) (domain.Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lon, 'f', 4, 64))
	q.Set("hourly", variables)
	q.Set("current", variables)
	q.Set("timezone", "UTC")
	q.Set("timeformat", "unixtime")
	q.Set("forecast_days", strconv.Itoa(c.forecastDays))
	q.Set("temperature_unit", c.temperatureUnit)
	q.Set("wind_speed_unit", c.windSpeedUnit)

	u := c.baseURL + "/v1/forecast?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Forecast{}, httpStatusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode forecast response: %w", err)
	}

	return toForecast(decoded)
}

func toForecast(r forecastResponse) (domain.Forecast, error) {
	if r.Hourly == nil && r.Current == nil {
		return domain.Forecast{}, errors.New("forecast response has neither hourly nor current data")
	}

	var out domain.Forecast

	if h := r.Hourly; h != nil {
		out.Hourly = make([]domain.WeatherSnapshot, 0, len(h.Time))
		for i, ts := range h.Time {
			out.Hourly = append(out.Hourly, domain.WeatherSnapshot{
				Time:                time.Unix(ts, 0).UTC(),
				Temperature:         at(h.Temperature, i),
				ApparentTemperature: at(h.ApparentTemperature, i),
				WeatherCode:         code(at(h.WeatherCode, i)),
				WindSpeed:           at(h.WindSpeed, i),
				WindGusts:           at(h.WindGusts, i),
				WindDirection:       at(h.WindDirection, i),
				Humidity:            at(h.Humidity, i),
				Precipitation:       at(h.Precipitation, i),
				Pressure:            at(h.Pressure, i),
				IsForecast:          true,
			})
		}
	}

	if cur := r.Current; cur != nil {
		out.Current = &domain.WeatherSnapshot{
			Time:                time.Unix(cur.Time, 0).UTC(),
			Temperature:         cur.Temperature,
			ApparentTemperature: cur.ApparentTemperature,
			WeatherCode:         code(cur.WeatherCode),
			WindSpeed:           cur.WindSpeed,
			WindGusts:           cur.WindGusts,
			WindDirection:       cur.WindDirection,
			Humidity:            cur.Humidity,
			Precipitation:       cur.Precipitation,
			Pressure:            cur.Pressure,
		}
	}

	return out, nil
}

// at tolerates series shorter than the time axis.
func at(series []*float64, i int) *float64 {
	if i < 0 || i >= len(series) {
		return nil
	}
	return series[i]
}

func code(v *float64) *int {
	if v == nil {
		return nil
	}
	c := int(math.Round(*v))
	return &c
}
