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
)

// SQLite backed cache of route candidates keyed by rounded endpoints.
type SqliteRouteCache struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db, MaxAge: DefaultRouteMaxAge}
}

func (s *SqliteRouteCache) Get(ctx context.Context, key string) ([]domain.RouteCandidate, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get route cache: key must not be empty")
	}

	var payload string
	var createdAt int64
	err := s.DB.QueryRowContext(ctx, `
	SELECT
        candidates,
        created_at
    FROM route_cache
    WHERE route_key = ?;
	`, key).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return decodeRoutes(payload, createdAt, s.MaxAge)
}

func (s *SqliteRouteCache) Put(ctx context.Context, key string, routes []domain.RouteCandidate) error {
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
	INSERT OR REPLACE INTO route_cache (
        route_key,
        candidates,
        created_at
    )
    VALUES (?, ?, ?);
	`, key, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
