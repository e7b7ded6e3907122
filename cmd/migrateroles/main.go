package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/jeannegris/equora/internal/config"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/internal/usecase"
)

// Rewrites legacy English gpac roles (doctor, nurse, receptionist, admin) to
// their Portuguese equivalents. Safe to run repeatedly.
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

	staff := repository.NewStaffRepository(db)
	uc := usecase.NewStaffUsecase(staff, nil, 0, 0)

	n, err := uc.MigrateRoles(ctx)
	if err != nil {
		log.Fatalf("migrate roles: %v", err)
	}
	log.Printf("migrated %d colaborador roles", n)
}
