package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jeannegris/equora/internal/config"
	"github.com/jeannegris/equora/internal/handler"
	"github.com/jeannegris/equora/internal/repository"
	"github.com/jeannegris/equora/internal/router"
	"github.com/jeannegris/equora/internal/service/geoip"
	"github.com/jeannegris/equora/internal/service/mercadopago"
	"github.com/jeannegris/equora/internal/usecase"
	"github.com/jeannegris/equora/pkg/jwtutil"
)

// TOTP issuers shown in authenticator apps.
const (
	equoraIssuer = "Equora Systems"
	gpacIssuer   = "GPAC"
)

// New wires repositories, usecases and handlers over shared Postgres and
// Redis connections and returns the HTTP server plus the geoip resolver so
// the caller can close it on shutdown.
func New(cfg config.AppConfig, db *pgxpool.Pool, rdb *redis.Client) (*http.Server, *geoip.Resolver) {
	tokenRepo := repository.NewTokenRepository(rdb)
	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	miscRepo := repository.NewMiscRepository(db)
	bkUserRepo := repository.NewAdminUserRepository(db, "bkautocenter")
	aguaUserRepo := repository.NewAdminUserRepository(db, "aguanaboca")

	geo := geoip.Open(cfg.GeoIPDBPath)
	mp := mercadopago.NewClient(cfg.MercadoPagoBaseURL, cfg.MercadoPagoToken)
	bkSigner := jwtutil.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	aguaSigner := jwtutil.NewSigner(cfg.JWTSecret, cfg.JWTTTL)

	authUC := usecase.NewAuthUsecase(userRepo, tokenRepo, cfg.SessionTTL, cfg.TempTokenTTL)
	usersUC := usecase.NewUsersUsecase(userRepo, equoraIssuer)
	staffUC := usecase.NewStaffUsecase(staffRepo, tokenRepo, cfg.SessionTTL, cfg.TempTokenTTL)
	twoFAUC := usecase.NewStaffTwoFAUsecase(staffRepo, gpacIssuer)
	checkoutUC := usecase.NewCheckoutUsecase(orderRepo, mp, cfg.PublicBaseURL)
	statsUC := usecase.NewStatsUsecase(miscRepo, geo)
	bkAuthUC := usecase.NewStorefrontAuthUsecase(bkUserRepo, bkSigner)
	aguaAuthUC := usecase.NewStorefrontAuthUsecase(aguaUserRepo, aguaSigner)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Users:    handler.NewUsersHandler(usersUC),
		TwoFA:    handler.NewTwoFAHandler(twoFAUC),
		Staff:    handler.NewStaffHandler(staffUC, cfg.SessionTTL),
		Schedule: handler.NewScheduleHandler(scheduleRepo),
		Profiles: handler.NewProfileHandler(miscRepo),
		Catalog:  handler.NewCatalogHandler(catalogRepo, cfg.UploadDir),
		Payment:  handler.NewPaymentHandler(checkoutUC),
		BKAuth:   handler.NewStorefrontAuthHandler(bkAuthUC),
		AguaAuth: handler.NewStorefrontAuthHandler(aguaAuthUC),
		Stats:    handler.NewStatsHandler(statsUC, miscRepo),
		Status:   handler.NewStatusHandler(miscRepo),
	}
	g := router.NewGuards(authUC, usersUC, staffUC, bkSigner, aguaSigner)

	r := chi.NewRouter()
	router.SetupRoutes(r, h, g, cfg.UploadDir)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}, geo
}

// Shutdown drains the HTTP server and releases shared resources.
func Shutdown(ctx context.Context, srv *http.Server, db *pgxpool.Pool, rdb *redis.Client, geo *geoip.Resolver) error {
	err := srv.Shutdown(ctx)
	geo.Close()
	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		db.Close()
	}
	return err
}
