package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/archivus/masterdocs/internal/app/config"
	appservices "github.com/archivus/masterdocs/internal/app/services"
	"github.com/archivus/masterdocs/internal/app/worker"
	"github.com/archivus/masterdocs/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.NewWithLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL"))).With("component", "worker")

	log.Info("Starting master documents reconciliation worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serviceManager, err := appservices.NewServiceManager(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize service manager", "error", err)
		os.Exit(1)
	}
	defer serviceManager.Close()

	// Health check
	if err := serviceManager.HealthCheck(ctx); err != nil {
		log.Error("Service health check failed", "error", err)
		serviceManager.Close()
		os.Exit(1)
	}

	var indexer worker.DocumentIndexer
	if serviceManager.Search != nil {
		indexer = serviceManager.Search
	}

	repos := serviceManager.Repositories
	reconciler := worker.NewReconciler(
		repos.DeletionJobRepo,
		repos.DocumentRepo,
		repos.SubDocumentRepo,
		serviceManager.DeletionService,
		serviceManager.Storage,
		indexer,
		log,
		worker.Config{
			StaleAfter:          cfg.Worker.StaleAfter,
			MaxAttempts:         cfg.Worker.MaxAttempts,
			BatchSize:           cfg.Worker.BatchSize,
			CleanupMissingFiles: cfg.Worker.CleanupMissingFiles,
		},
	)

	// The index may have missed writes while search was down
	if count, err := reconciler.Reindex(ctx); err != nil {
		log.Warn("Search reindex failed", "error", err)
	} else if indexer != nil {
		log.Info("Search index rebuilt", "documents", count)
	}

	log.Info("Worker started",
		"interval", cfg.Worker.Interval,
		"stale_after", cfg.Worker.StaleAfter,
		"max_attempts", cfg.Worker.MaxAttempts,
		"cleanup_missing_files", cfg.Worker.CleanupMissingFiles)

	reconciler.Run(ctx, cfg.Worker.Interval)

	log.Info("Worker stopped")
}
