package domain

import "time"

// WeatherSnapshot is one forecast record. Every measurement is optional
// because providers omit fields depending on model and location.
type WeatherSnapshot struct {
	Time                time.Time `json:"time"`
	Temperature         *float64  `json:"temperature,omitempty"`
	ApparentTemperature *float64  `json:"apparent_temperature,omitempty"`
	WeatherCode         *int      `json:"weather_code,omitempty"`
	WindSpeed           *float64  `json:"wind_speed,omitempty"`
	WindGusts           *float64  `json:"wind_gusts,omitempty"`
	WindDirection       *float64  `json:"wind_direction,omitempty"`
	Humidity            *float64  `json:"humidity,omitempty"`
	Precipitation       *float64  `json:"precipitation,omitempty"`
	Pressure            *float64  `json:"pressure,omitempty"`

	// IsForecast is true when the value came from the hourly series rather
	// than the current-conditions fallback.
	IsForecast bool `json:"is_forecast"`
}

// Forecast is everything the forecast provider returns for one coordinate.
// Hourly is in chronological order.
type Forecast struct {
	Hourly  []WeatherSnapshot `json:"hourly"`
	Current *WeatherSnapshot  `json:"current,omitempty"`
}

// WMO weather interpretation codes.
func IsPrecipitationCode(code int) bool {
	return (code >= 51 && code <= 67) || (code >= 80 && code <= 82)
}

func IsSnowCode(code int) bool {
	return (code >= 71 && code <= 77) || code == 85 || code == 86
}

func IsSevereCode(code int) bool {
	return code >= 95
}
