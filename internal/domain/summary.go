package domain

// Extreme is a measured value and the place where it occurs.
type Extreme struct {
	Value    float64 `json:"value"`
	Location string  `json:"location"`
}

// Trip-level weather digest derived from all resolved waypoints.
// Extremes are nil when no waypoint reported the measurement.
type TripSummary struct {
	MinTemperature *Extreme `json:"min_temperature,omitempty"`
	MaxTemperature *Extreme `json:"max_temperature,omitempty"`
	MaxWindSpeed   *Extreme `json:"max_wind_speed,omitempty"`

	HasPrecipitation   bool `json:"has_precipitation"`
	PrecipitationCount int  `json:"precipitation_count"`
	HasSnow            bool `json:"has_snow"`
	SnowCount          int  `json:"snow_count"`
	HasSevere          bool `json:"has_severe"`
	SevereCount        int  `json:"severe_count"`

	WaypointsWithWeather int `json:"waypoints_with_weather"`
}
