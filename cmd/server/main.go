package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jeannegris/equora/internal/config"
	"github.com/jeannegris/equora/internal/server"
)

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
	rdb := config.ConnectRedis(cfg)

	srv, geo := server.New(cfg, db, rdb)

	go func() {
		log.Printf("HTTP server listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx, srv, db, rdb, geo); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
