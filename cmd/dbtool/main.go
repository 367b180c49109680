package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"trip-weather-service/internal/adapters/repositories"
	"trip-weather-service/internal/config"
	"trip-weather-service/internal/platform/db"
	"trip-weather-service/internal/services"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	seedPath := config.Get("PLACE_SEED_PATH", "")
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(db *sql.DB, seedPath string) error {
	log.Println("Initializing cache schema...")
	if err := repositories.InitSchema(db); err != nil {
		return err
	}
	log.Println("Schema ready.")

	if seedPath == "" {
		return nil
	}

	log.Println("Seeding place cache...")
	n, err := repositories.SeedPlacesFromJSON(db, seedPath, services.PlaceKeyDecimals, true)
	if err != nil {
		return err
	}
	log.Printf("Seeding complete. places=%d", n)

	return nil
}
