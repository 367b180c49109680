package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed cache mapping coordinate keys to display names.
// Keys are expected to be produced by Coordinates.Key so that nearby
// lookups collapse onto one row.
type SqlitePlaceCache struct {
	DB *sql.DB
}

func NewSqlitePlaceCache(db *sql.DB) *SqlitePlaceCache {
	return &SqlitePlaceCache{DB: db}
}

// Fetch cached names for the given coordinate keys.
func (s *SqlitePlaceCache) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	if s.DB == nil {
		return nil, errors.New("place cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]string{}, nil
	}

	ph := make([]string, len(uniq))
	args := make([]any, 0, len(uniq))
	for i, k := range uniq {
		ph[i] = "?"
		args = append(args, k)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        coord_key,
        name
    FROM place_cache
    WHERE coord_key IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
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
func (s *SqlitePlaceCache) PutMany(ctx context.Context, names map[string]string) error {
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
	INSERT OR REPLACE INTO place_cache (
        coord_key,
        name,
        updated_at
    )
    VALUES (?, ?, ?);
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
