package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/jeannegris/equora/internal/config"
	"github.com/jeannegris/equora/internal/domain"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/xerrors"
)

// Seeds the first equora admin account, 2FA enabled. Re-running against an
// existing username is a no-op.
func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@equora.local", "admin email")
	password := flag.String("password", "admin123", "admin password")
	flag.Parse()

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

	users := repository.NewUserRepository(db)
	uc := usecase.NewUsersUsecase(users, "Equora Systems")

	user, err := uc.Create(ctx, domain.UserCreate{
		Username:  *username,
		Email:     *email,
		Password:  *password,
		Enable2FA: true,
	})
	if err != nil {
		if errors.Is(err, xerrors.ErrUserAlreadyExists) {
			log.Printf("admin %q already exists, nothing to do", *username)
			return
		}
		log.Fatalf("create admin: %v", err)
	}

	isAdmin := true
	if _, err := uc.Update(ctx, user.ID, domain.UserUpdate{IsAdmin: &isAdmin}); err != nil {
		log.Fatalf("grant admin: %v", err)
	}

	log.Printf("admin %q created", *username)
	if user.ProvisioningURI != nil {
		log.Printf("provisioning URI: %s", *user.ProvisioningURI)
	}
}
