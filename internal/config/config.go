package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting read from the environment.
type Config struct {
	Port string

	ORSAPIKey        string
	ORSBaseURL       string
	OpenMeteoBaseURL string
	NominatimBaseURL string
	GeocoderAgent    string

	IntervalMiles         float64
	SpeedCorrectionFactor float64
	RefreshInterval       time.Duration
	GeocodeStagger        time.Duration
	RouteAlternatives     int
	TemperatureUnit       string
	WindSpeedUnit         string

	DBDriver         string
	DBPath           string
	DatabaseURL      string
	RedisURL         string
	ForecastCacheTTL time.Duration
	SessionIdleTTL   time.Duration
}

const defaultUserAgent = "trip-weather-service/1.0"

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func Float(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return f, nil
}

func Int(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return n, nil
}

func Bool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return b, nil
}

func Duration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: %w", key, v, err)
	}
	return d, nil
}

// Load reads and validates the configuration. The ORS key is not required
// here; commands that talk to the routing engine check it themselves.
func Load() (Config, error) {
	cfg := Config{
		Port:             Get("PORT", "8080"),
		ORSAPIKey:        Get("ORS_API_KEY", ""),
		ORSBaseURL:       Get("ORS_BASE_URL", ""),
		OpenMeteoBaseURL: Get("OPEN_METEO_BASE_URL", ""),
		NominatimBaseURL: Get("NOMINATIM_BASE_URL", ""),
		GeocoderAgent:    Get("GEOCODER_USER_AGENT", defaultUserAgent),
		TemperatureUnit:  strings.ToLower(Get("FORECAST_TEMPERATURE_UNIT", "fahrenheit")),
		WindSpeedUnit:    strings.ToLower(Get("FORECAST_WIND_UNIT", "mph")),
		DBDriver:         strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:           Get("DB_PATH", "data/app.db"),
		DatabaseURL:      Get("DATABASE_URL", ""),
		RedisURL:         Get("REDIS_URL", ""),
	}

	var err error
	if cfg.IntervalMiles, err = Float("WAYPOINT_INTERVAL_MILES", 50); err != nil {
		return Config{}, err
	}
	if cfg.SpeedCorrectionFactor, err = Float("SPEED_CORRECTION_FACTOR", 1.27); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval, err = Duration("AUTO_REFRESH_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.GeocodeStagger, err = Duration("GEOCODE_STAGGER", 200*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RouteAlternatives, err = Int("ROUTE_ALTERNATIVES", 3); err != nil {
		return Config{}, err
	}
	if cfg.ForecastCacheTTL, err = Duration("FORECAST_CACHE_TTL", 2*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdleTTL, err = Duration("SESSION_IDLE_TTL", 2*time.Hour); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.IntervalMiles <= 0 {
		return fmt.Errorf("config: WAYPOINT_INTERVAL_MILES must be positive, got %v", c.IntervalMiles)
	}
	if c.SpeedCorrectionFactor <= 0 {
		return fmt.Errorf("config: SPEED_CORRECTION_FACTOR must be positive, got %v", c.SpeedCorrectionFactor)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("config: AUTO_REFRESH_INTERVAL must be positive, got %s", c.RefreshInterval)
	}
	if c.GeocodeStagger < 0 {
		return fmt.Errorf("config: GEOCODE_STAGGER must not be negative, got %s", c.GeocodeStagger)
	}
	if c.RouteAlternatives < 1 {
		return fmt.Errorf("config: ROUTE_ALTERNATIVES must be at least 1, got %d", c.RouteAlternatives)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("config: SESSION_IDLE_TTL must be positive, got %s", c.SessionIdleTTL)
	}

	switch c.DBDriver {
	case "", "none", "sqlite":
	case "pgx", "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}
