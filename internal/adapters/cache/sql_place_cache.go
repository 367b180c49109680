package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"trip-weather-service/internal/platform/obs"
)

// SQLPlaceCache is a Postgres-backed cache mapping coordinate keys to
// display names.
type SQLPlaceCache struct {
	DB *sql.DB
}

func NewSQLPlaceCache(db *sql.DB) *SQLPlaceCache {
	return &SQLPlaceCache{DB: db}
}

// Fetch cached names for the given coordinate keys.
func (s *SQLPlaceCache) GetMany(ctx context.Context, keys []string) (_ map[string]string, err error) {
	defer obs.Time(ctx, "place.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("place cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	q := `
	SELECT coord_key, name
    FROM place_cache
    WHERE coord_key = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get place cache: query place_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(uniq))
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, fmt.Errorf("get place cache: scan rows: %w", err)
		}
		out[key] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get place cache: row iteration: %w", err)
	}

	return out, nil
}

// Store coordinate key -> name mappings in the cache.
func (s *SQLPlaceCache) PutMany(ctx context.Context, names map[string]string) error {
	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}

	if len(names) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert place cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO place_cache (coord_key, name, updated_at)
    VALUES ($1, $2, $3)
	ON CONFLICT (coord_key) DO UPDATE
	SET name = EXCLUDED.name,
		updated_at = EXCLUDED.updated_at;
	`)
	if err != nil {
		return fmt.Errorf("insert place cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for key, name := range names {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert place cache: empty coordinate key")
		}

		if _, err := stmt.ExecContext(ctx, key, name, now); err != nil {
			return fmt.Errorf("insert place cache key=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert place cache commit: %w", err)
	}

	return nil
}
