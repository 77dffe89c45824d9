package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/app"
	"github.com/WebPetFabrica/web-pet-back-sub000/internal/infra/config"
)

func main() {
	// Missing .env is fine, variables may come from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatalf("application terminated: %v", err)
	}
}
