package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"trip-weather-service/internal/domain"
)

// Initialize the cache schema. The statements are valid for both SQLite
// and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPlaceCacheQuery := `
	CREATE TABLE IF NOT EXISTS place_cache (
        coord_key TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        updated_at BIGINT NOT NULL
    );
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        route_key TEXT PRIMARY KEY,
        candidates TEXT NOT NULL,
        created_at BIGINT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_route_cache_created_at
    ON route_cache(created_at);
	`

	statements := []string{
		createPlaceCacheQuery,
		createRouteCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// Populate the place cache with known names from a JSON file.
// Keys must use the same rounding as the place resolver.
func SeedPlacesFromJSON(db *sql.DB, jsonPath string, keyDecimals int, postgres bool) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed places: parse json: %w", err)
	}

	rows := make(map[string]string, len(data))
	for i, item := range data {
		c := domain.Coordinates{Lat: item.Lat, Lon: item.Lon}
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("seed places: item at index %d: %w", i+1, err)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return 0, fmt.Errorf("seed places: item at index %d: name cannot be empty", i+1)
		}
		rows[c.Key(keyDecimals)] = name
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT OR REPLACE INTO place_cache (
		coord_key,
		name,
		updated_at
	)
	VALUES (?, ?, ?);
	`
	if postgres {
		query = `
		INSERT INTO place_cache (coord_key, name, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (coord_key) DO UPDATE
		SET name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at;
		`
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for key, name := range rows {
		if _, err := stmt.Exec(key, name, now); err != nil {
			return 0, fmt.Errorf("seed places: insert coord_key=%s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed places: commit tx: %w", err)
	}

	return len(rows), nil
}
