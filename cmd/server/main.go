package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/archivus/masterdocs/internal/app/config"
	"github.com/archivus/masterdocs/internal/app/server"
	appservices "github.com/archivus/masterdocs/internal/app/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.NewWithLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	serviceManager, err := appservices.NewServiceManager(context.Background(), cfg, log)
	if err != nil {
		log.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Schema is kept current on boot; migrate up does the same offline
	if err := serviceManager.DB.AutoMigrate(models.GetAllModels()...); err != nil {
		log.Error("Failed to migrate database", "error", err)
		serviceManager.Close()
		os.Exit(1)
	}

	srv := server.New(cfg, log, serviceManager)

	// Start server in goroutine
	go func() {
		log.Info("Starting master documents server",
			"port", cfg.Server.Port,
			"environment", cfg.Environment,
			"storage", cfg.Storage.Type)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server shutdown complete")
}
