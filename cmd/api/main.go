package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/lusapp/backend/internal/pkg/logger"
	"github.com/lusapp/backend/internal/server"
)

// @title Lusapp API
// @version 1.0
// @description Social fitness platform backend: races, groups, activity feed and chat

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT or Google ID token for authorization

// @securityDefinitions.basic BasicAuth

func main() {
	// A missing .env is fine; real deployments set environment variables
	_ = godotenv.Load()

	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
