package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"trip-weather-service/internal/adapters/forecast"
	"trip-weather-service/internal/adapters/geocode"
	"trip-weather-service/internal/adapters/routing"
	"trip-weather-service/internal/config"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/ports"
	"trip-weather-service/internal/services"

	"github.com/joho/godotenv"
)

// tripcli prints a one-shot weather report for a drive between two points.
func main() {
	from := flag.String("from", "", "origin as lat,lon or an address")
	to := flag.String("to", "", "destination as lat,lon or an address")
	depart := flag.String("depart", "", "departure time (RFC3339), defaults to now")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ors, err := routing.NewORSRouteProvider(cfg.ORSAPIKey, cfg.ORSBaseURL)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	origin, err := resolvePoint(ctx, ors, *from)
	if err != nil {
		log.Fatalf("-from: %v", err)
	}
	destination, err := resolvePoint(ctx, ors, *to)
	if err != nil {
		log.Fatalf("-to: %v", err)
	}
	deps := services.TripDeps{
		Routes: ors,
		Forecasts: services.NewForecastResolver(forecast.NewOpenMeteoClient(forecast.Options{
			BaseURL:         cfg.OpenMeteoBaseURL,
			TemperatureUnit: cfg.TemperatureUnit,
			WindSpeedUnit:   cfg.WindSpeedUnit,
		})),
		Places: services.NewPlaceResolver(
			geocode.NewNominatimClient(cfg.NominatimBaseURL, cfg.GeocoderAgent), nil, cfg.GeocodeStagger,
		),
	}

	session := services.NewTripSession("cli", deps, services.SessionConfig{
		IntervalMiles:         cfg.IntervalMiles,
		SpeedCorrectionFactor: cfg.SpeedCorrectionFactor,
		Alternatives:          1,
	})
	defer session.Close()

	if err := run(ctx, session, origin, destination, *depart); err != nil {
		log.Fatal(err)
	}
	printReport(os.Stdout, session.Snapshot())
}

func run(ctx context.Context, s *services.TripSession, origin, destination domain.Coordinates, depart string) error {
	if err := s.SetEndpoints(origin, destination); err != nil {
		return err
	}
	if depart != "" {
		at, err := time.Parse(time.RFC3339, depart)
		if err != nil {
			return fmt.Errorf("-depart: %w", err)
		}
		if err := s.SetDeparture(at); err != nil {
			return err
		}
	}
	if err := s.CalculateRoute(ctx); err != nil {
		return err
	}
	return s.Wait(ctx)
}

// resolvePoint accepts "lat,lon" and falls back to an address search for
// anything that does not parse as a coordinate pair.
func resolvePoint(ctx context.Context, search ports.PlaceSearcher, v string) (domain.Coordinates, error) {
	c, err := parseCoordinates(v)
	if err == nil {
		return c, nil
	}
	if !looksLikeAddress(v) {
		return domain.Coordinates{}, err
	}
	return search.Search(ctx, v)
}

func looksLikeAddress(v string) bool {
	return strings.IndexFunc(v, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
}

func parseCoordinates(v string) (domain.Coordinates, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return domain.Coordinates{}, fmt.Errorf("%w: want lat,lon, got %q", domain.ErrInvalidInput, v)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: latitude %q", domain.ErrInvalidInput, parts[0])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: longitude %q", domain.ErrInvalidInput, parts[1])
	}

	c := domain.Coordinates{Lat: lat, Lon: lon}
	return c, c.Validate()
}

func printReport(w io.Writer, v services.TripView) {
	if len(v.Routes) > 0 {
		r := v.Routes[v.Selected]
		fmt.Fprintf(w, "Route: %.0f mi, %s driving\n\n", r.DistanceMeters/domain.MetersPerMile,
			(time.Duration(r.DurationSeconds) * time.Second).Round(time.Minute))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WAYPOINT\tMILES\tETA\tPLACE\tTEMP\tWIND\tCONDITIONS")
	for _, wp := range v.Waypoints {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			wp.Label,
			wp.DistanceFromStartMiles,
			wp.ETATime.Local().Format("Mon 15:04"),
			wp.LocationName,
			formatValue(weatherField(wp.Weather, func(s *domain.WeatherSnapshot) *float64 { return s.Temperature }), "°"),
			formatValue(weatherField(wp.Weather, func(s *domain.WeatherSnapshot) *float64 { return s.WindSpeed }), ""),
			conditions(wp.Weather),
		)
	}
	tw.Flush()

	if sum := v.Summary; sum != nil {
		fmt.Fprintln(w)
		if sum.MinTemperature != nil && sum.MaxTemperature != nil {
			fmt.Fprintf(w, "Low %.0f° near %s, high %.0f° near %s\n",
				sum.MinTemperature.Value, sum.MinTemperature.Location,
				sum.MaxTemperature.Value, sum.MaxTemperature.Location)
		}
		if sum.MaxWindSpeed != nil {
			fmt.Fprintf(w, "Strongest wind %.0f near %s\n", sum.MaxWindSpeed.Value, sum.MaxWindSpeed.Location)
		}
		fmt.Fprintf(w, "Precipitation at %d, snow at %d, severe weather at %d of %d waypoints\n",
			sum.PrecipitationCount, sum.SnowCount, sum.SevereCount, sum.WaypointsWithWeather)
	}
}

func weatherField(s *domain.WeatherSnapshot, get func(*domain.WeatherSnapshot) *float64) *float64 {
	if s == nil {
		return nil
	}
	return get(s)
}

func formatValue(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%s", *v, unit)
}

func conditions(s *domain.WeatherSnapshot) string {
	if s == nil {
		return "unavailable"
	}
	if s.WeatherCode == nil {
		return "-"
	}

	var tags []string
	code := *s.WeatherCode
	if domain.IsPrecipitationCode(code) {
		tags = append(tags, "rain")
	}
	if domain.IsSnowCode(code) {
		tags = append(tags, "snow")
	}
	if domain.IsSevereCode(code) {
		tags = append(tags, "severe")
	}
	if !s.IsForecast {
		tags = append(tags, "current")
	}
	if len(tags) == 0 {
		return fmt.Sprintf("code %d", code)
	}
	return strings.Join(tags, ",")
}
