package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"trip-weather-service/internal/domain"
	"trip-weather-service/internal/platform/obs"
)

// DefaultRouteMaxAge bounds how long cached road geometry is trusted.
const DefaultRouteMaxAge = 24 * time.Hour

// SQLRouteCache is a Postgres-backed cache of route candidates keyed by
// rounded endpoints. Candidates are stored as JSON.
type SQLRouteCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db, MaxAge: DefaultRouteMaxAge}
}

func (s *SQLRouteCache) Get(ctx context.Context, key string) (_ []domain.RouteCandidate, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	var payload string
	var createdAt int64
	err = s.DB.QueryRowContext(ctx, `
	SELECT candidates, created_at
    FROM route_cache
    WHERE route_key = $1;
	`, key).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return decodeRoutes(payload, createdAt, s.MaxAge)
}

func (s *SQLRouteCache) Put(ctx context.Context, key string, routes []domain.RouteCandidate) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	payload, err := json.Marshal(routes)
	if err != nil {
		return fmt.Errorf("insert route cache: marshal candidates: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO route_cache (route_key, candidates, created_at)
    VALUES ($1, $2, $3)
	ON CONFLICT (route_key) DO UPDATE
	SET candidates = EXCLUDED.candidates,
		created_at = EXCLUDED.created_at;
	`, key, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}

// decodeRoutes treats rows older than maxAge as misses.
func decodeRoutes(payload string, createdAt int64, maxAge time.Duration) ([]domain.RouteCandidate, bool, error) {
	if maxAge > 0 && time.Since(time.Unix(createdAt, 0)) > maxAge {
		return nil, false, nil
	}

	var routes []domain.RouteCandidate
	if err := json.Unmarshal([]byte(payload), &routes); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode candidates: %w", err)
	}
	return routes, true, nil
}
