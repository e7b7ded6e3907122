package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/jeannegris/equora/internal/config"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/internal/service/geoip"
	"github.com/jeannegris/equora/internal/usecase"
)

// Backfills GeoIP locations for access stats recorded while the database was
// unavailable.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	cfg := config.Load()

	ctx := context.Background()
	db, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	geo := geoip.Open(cfg.GeoIPDBPath)
	defer geo.Close()

	misc := repository.NewMiscRepository(db)
	uc := usecase.NewStatsUsecase(misc, geo)

	n, err := uc.BackfillLocations(ctx)
	if err != nil {
		log.Fatalf("backfill: %v", err)
	}
	log.Printf("filled %d access stats with locations", n)
}
