package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"trip-weather-service/internal/adapters/cache"
	"trip-weather-service/internal/adapters/forecast"
	"trip-weather-service/internal/adapters/geocode"
	"trip-weather-service/internal/adapters/repositories"
	"trip-weather-service/internal/adapters/routing"
	"trip-weather-service/internal/api"
	"trip-weather-service/internal/config"
	"trip-weather-service/internal/platform/db"
	"trip-weather-service/internal/ports"
	"trip-weather-service/internal/services"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (ORS, Open-Meteo, Nominatim, SQL and redis
// caches) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if strings.TrimSpace(cfg.ORSAPIKey) == "" {
		log.Fatal("ORS_API_KEY is required")
	}

	sqlDB, err := openCacheDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if sqlDB != nil {
		defer sqlDB.Close()
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = openRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		defer rdb.Close()
	}

	ors, err := routing.NewORSRouteProvider(cfg.ORSAPIKey, cfg.ORSBaseURL)
	if err != nil {
		log.Fatal(err)
	}
	deps := buildDeps(cfg, ors, sqlDB, rdb)

	registry := services.NewTripRegistry(deps, services.SessionConfig{
		IntervalMiles:         cfg.IntervalMiles,
		SpeedCorrectionFactor: cfg.SpeedCorrectionFactor,
		RefreshInterval:       cfg.RefreshInterval,
		Alternatives:          cfg.RouteAlternatives,
	})
	defer registry.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, registry, cfg.SessionIdleTTL)

	// Route calculation runs inside the request, so the write timeout covers
	// a cold routing call.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(registry, ors),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openCacheDB opens the persistent cache database selected by DB_DRIVER and
// makes sure its schema exists. An empty driver disables SQL caching.
func openCacheDB(cfg config.Config) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch cfg.DBDriver {
	case "", "none":
		log.Println("DB_DRIVER not set, place and route caches disabled")
		return nil, nil
	case "sqlite":
		conn, err = db.OpenSqlite(cfg.DBPath)
	default:
		conn, err = db.Open(cfg.DatabaseURL)
	}
	if err != nil {
		return nil, err
	}

	if err := repositories.InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Optional warm start for the place cache on local runs.
	if seedPath := config.Get("PLACE_SEED_PATH", ""); seedPath != "" {
		n, err := repositories.SeedPlacesFromJSON(conn, seedPath, services.PlaceKeyDecimals, cfg.DBDriver != "sqlite")
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("open cache db: %w", err)
		}
		log.Printf("seeded place cache count=%d path=%s", n, seedPath)
	}
	return conn, nil
}

func openRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse REDIS_URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("open redis: ping: %w", err)
	}
	return rdb, nil
}

func buildDeps(cfg config.Config, ors *routing.ORSRouteProvider, sqlDB *sql.DB, rdb *redis.Client) services.TripDeps {
	var (
		routes     ports.RouteProvider = ors
		placeCache ports.PlaceCache
	)
	switch {
	case sqlDB == nil:
	case cfg.DBDriver == "sqlite":
		routes = routing.NewCachedRouteProvider(ors, cache.NewSqliteRouteCache(sqlDB))
		placeCache = cache.NewSqlitePlaceCache(sqlDB)
	default:
		routes = routing.NewCachedRouteProvider(ors, cache.NewSQLRouteCache(sqlDB))
		placeCache = cache.NewSQLPlaceCache(sqlDB)
	}

	var forecasts ports.ForecastProvider = forecast.NewOpenMeteoClient(forecast.Options{
		BaseURL:         cfg.OpenMeteoBaseURL,
		TemperatureUnit: cfg.TemperatureUnit,
		WindSpeedUnit:   cfg.WindSpeedUnit,
	})
	if rdb != nil {
		forecasts = forecast.NewCachedForecastProvider(forecasts, cache.NewRedisForecastCache(rdb, cfg.ForecastCacheTTL))
	}

	geocoder := geocode.NewNominatimClient(cfg.NominatimBaseURL, cfg.GeocoderAgent)

	return services.TripDeps{
		Routes:    routes,
		Forecasts: services.NewForecastResolver(forecasts),
		Places:    services.NewPlaceResolver(geocoder, placeCache, cfg.GeocodeStagger),
	}
}

// sweepSessions drops trips nobody has touched for idle.
func sweepSessions(ctx context.Context, registry *services.TripRegistry, idle time.Duration) {
	every := idle / 4
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := registry.Sweep(now, idle); n > 0 {
				log.Printf("swept idle trips count=%d remaining=%d", n, registry.Len())
			}
		}
	}
}
