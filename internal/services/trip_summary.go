package services

import "trip-weather-service/internal/domain"

// Summarize reduces resolved waypoints to temperature and wind extremes and
// hazard counts. It returns nil when no waypoint carries weather.
// Ties keep the first waypoint in route order.
func Summarize(waypoints []domain.ResolvedWaypoint) *domain.TripSummary {
	var s domain.TripSummary

	for _, wp := range waypoints {
		w := wp.Weather
		if w == nil {
			continue
		}
		s.WaypointsWithWeather++

		if w.Temperature != nil {
			t := *w.Temperature
			if s.MinTemperature == nil || t < s.MinTemperature.Value {
				s.MinTemperature = &domain.Extreme{Value: t, Location: wp.LocationName}
			}
			if s.MaxTemperature == nil || t > s.MaxTemperature.Value {
				s.MaxTemperature = &domain.Extreme{Value: t, Location: wp.LocationName}
			}
		}

		if w.WindSpeed != nil {
			v := *w.WindSpeed
			if s.MaxWindSpeed == nil || v > s.MaxWindSpeed.Value {
				s.MaxWindSpeed = &domain.Extreme{Value: v, Location: wp.LocationName}
			}
		}

		code := -1
		if w.WeatherCode != nil {
			code = *w.WeatherCode
		}

		precip := w.Precipitation != nil && *w.Precipitation > 0
		if precip || domain.IsPrecipitationCode(code) {
			s.PrecipitationCount++
		}
		if domain.IsSnowCode(code) {
			s.SnowCount++
		}
		if domain.IsSevereCode(code) {
			s.SevereCount++
		}
	}

	if s.WaypointsWithWeather == 0 {
		return nil
	}

	s.HasPrecipitation = s.PrecipitationCount > 0
	s.HasSnow = s.SnowCount > 0
	s.HasSevere = s.SevereCount > 0
	return &s
}
