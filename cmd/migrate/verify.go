package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	appservices "github.com/archivus/masterdocs/internal/app/services"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
)

// verifyProbe is the blob written to check that the storage backend is usable
var verifyProbe = []byte("%PDF-1.4\n% masterdocs storage probe\n%%EOF\n")

// verifySetup checks every backend the server will depend on. It fails on
// the first check that cannot pass.
func verifySetup(ctx context.Context, sm *appservices.ServiceManager) error {
	cfg := sm.Config
	fmt.Printf("Database: %s\n", maskDatabaseURL(cfg.GetDatabaseURL()))

	if err := sm.DB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	fmt.Println("  ping ok")

	if !sm.DB.IsSQLite() {
		var version string
		if err := sm.DB.Raw("SELECT version()").Scan(&version).Error; err != nil {
			return fmt.Errorf("failed to read PostgreSQL version: %w", err)
		}
		fmt.Printf("  %s\n", version)

		var jsonb string
		if err := sm.DB.Raw(`SELECT '{"probe": true}'::jsonb`).Scan(&jsonb).Error; err != nil {
			return fmt.Errorf("jsonb not supported: %w", err)
		}
		fmt.Println("  jsonb ok")
	}

	for _, model := range models.GetAllModels() {
		if !sm.DB.Migrator().HasTable(model) {
			fmt.Printf("  table for %T missing, run migrate up\n", model)
		}
	}

	if sqlDB, err := sm.DB.DB.DB(); err == nil {
		stats := sqlDB.Stats()
		fmt.Printf("  connections: max=%d open=%d in_use=%d idle=%d\n",
			stats.MaxOpenConnections, stats.OpenConnections, stats.InUse, stats.Idle)
	}

	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
	if err := verifyStorage(ctx, sm.Storage); err != nil {
		return err
	}
	fmt.Println("  store, read and delete ok")

	fmt.Println("Search:")
	switch {
	case sm.Search == nil:
		fmt.Println("  not configured, listing falls back to database search")
	case sm.Search.Healthy():
		fmt.Println("  meilisearch healthy")
	default:
		fmt.Println("  meilisearch unreachable, listing falls back to database search")
	}

	fmt.Println("Setup verified")
	return nil
}

// verifyStorage round-trips a small file through the configured backend
func verifyStorage(ctx context.Context, storage services.StorageService) error {
	path, err := storage.Store(ctx, services.StorageParams{
		FileReader:  bytes.NewReader(verifyProbe),
		Filename:    "probe.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(verifyProbe)),
	})
	if err != nil {
		return fmt.Errorf("storage write failed: %w", err)
	}

	content, err := storage.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("storage read failed: %w", err)
	}
	data, err := io.ReadAll(content)
	content.Close()
	if err != nil {
		return fmt.Errorf("storage read failed: %w", err)
	}
	if !bytes.Equal(data, verifyProbe) {
		return fmt.Errorf("storage returned %d bytes, wrote %d", len(data), len(verifyProbe))
	}

	if err := storage.Delete(ctx, path); err != nil {
		return fmt.Errorf("storage delete failed: %w", err)
	}
	return nil
}

// maskDatabaseURL hides the password of a connection URL
func maskDatabaseURL(databaseURL string) string {
	parsed, err := url.Parse(databaseURL)
	if err != nil || parsed.User == nil {
		return databaseURL
	}
	if _, ok := parsed.User.Password(); ok {
		parsed.User = url.UserPassword(parsed.User.Username(), "***")
	}
	return parsed.String()
}
