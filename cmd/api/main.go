// Command api serves the DevClub HTTP API.
//
//	@title						DevClub API
//	@version					1.0
//	@description				Student registration, admin dashboard and club management for the university DevClub.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/app"
	"github.com/zakarialoumaizia/DEVCLUBPROJECT/internal/infra/config"
)

func main() {
	if err := run(); err != nil {
		log.Printf("devclub-api: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return application.Run(ctx)
}
