package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/archivus/masterdocs/internal/app/config"
	appservices "github.com/archivus/masterdocs/internal/app/services"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/cache"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	// Initialize logger
	log := logger.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	// Maintenance commands never touch revocation or rate-limit keys
	cfg.Redis.URL = cache.MemoryURL

	ctx := context.Background()
	sm, err := appservices.NewServiceManager(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}
	defer sm.Close()

	switch command {
	case "up":
		err = runMigrations(ctx, sm)
	case "reset":
		err = resetDatabase(ctx, sm)
	case "status":
		err = migrationStatus(ctx, sm)
	case "seed", "setup-admin":
		err = setupAdmin(ctx, sm)
	case "sessions":
		err = listSessions(ctx, sm)
	case "verify":
		err = verifySetup(ctx, sm)
	case "force-logout":
		if len(os.Args) < 3 {
			printUsage()
			os.Exit(2)
		}
		err = forceLogout(ctx, sm, os.Args[2])
	default:
		log.Error("Unknown command", "command", command)
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("Command failed", "command", command, "error", err)
		sm.Close()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  up                      - Create or update tables and seed the document counter")
	fmt.Println("  reset                   - Drop all tables and recreate them")
	fmt.Println("  status                  - Show table status and the document counter")
	fmt.Println("  seed | setup-admin      - Create or update the admin from ADMIN_USERNAME/ADMIN_EMAIL/ADMIN_PASSWORD")
	fmt.Println("  sessions                - List users with their active-session flag")
	fmt.Println("  force-logout <username> - Record a logout for username")
	fmt.Println("  verify                  - Check database, storage and search connectivity")
}

func runMigrations(ctx context.Context, sm *appservices.ServiceManager) error {
	sm.Logger.Info("Running database migrations...")

	if err := sm.DB.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	value, err := services.SeedDocumentCounter(ctx, sm.Repositories.DocumentRepo, sm.Repositories.CounterRepo, sm.Logger)
	if err != nil {
		return fmt.Errorf("failed to seed document counter: %w", err)
	}

	sm.Logger.Info("Database migrations completed successfully", "document_counter", value)
	return nil
}

func resetDatabase(ctx context.Context, sm *appservices.ServiceManager) error {
	sm.Logger.Info("Resetting database...")

	// Drop in reverse order so dependents go before what they reference
	all := models.GetAllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := sm.DB.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}

	if err := runMigrations(ctx, sm); err != nil {
		return err
	}

	sm.Logger.Info("Database reset completed")
	return nil
}

func migrationStatus(ctx context.Context, sm *appservices.ServiceManager) error {
	sm.Logger.Info("Checking migration status...")

	missing := 0
	for _, model := range models.GetAllModels() {
		stmt := sm.DB.Model(model).Statement
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("failed to parse model: %w", err)
		}

		status := "exists"
		if !sm.DB.Migrator().HasTable(model) {
			status = "missing"
			missing++
		}
		sm.Logger.Info("Table status", "table", stmt.Schema.Table, "status", status)
	}

	if missing > 0 {
		sm.Logger.Warn("Schema incomplete, run migrate up", "missing_tables", missing)
		return nil
	}

	value, err := sm.Repositories.CounterRepo.Current(ctx, models.CounterMasterDocument)
	if err != nil {
		return err
	}
	sm.Logger.Info("Document counter", "name", models.CounterMasterDocument, "value", value)
	return nil
}

func setupAdmin(ctx context.Context, sm *appservices.ServiceManager) error {
	admin := sm.Config.Admin
	if admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required")
	}

	user, created, err := sm.UserService.EnsureAdmin(ctx, admin.Username, admin.Email, admin.Password)
	if err != nil {
		return err
	}

	if created {
		sm.Logger.Info("Admin user created", "username", user.Username, "email", user.Email)
	} else {
		sm.Logger.Info("Admin user updated", "username", user.Username, "email", user.Email)
	}
	return nil
}

func listSessions(ctx context.Context, sm *appservices.ServiceManager) error {
	sessions, err := sm.UserService.Sessions(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("%-24s %-8s %-8s %-25s %-25s\n", "USERNAME", "LEVEL", "ACTIVE", "LAST LOGIN", "LAST LOGOUT")
	for _, session := range sessions {
		fmt.Printf("%-24s %-8s %-8t %-25s %-25s\n",
			session.Username,
			session.UserLevel,
			session.Active,
			formatTime(session.LastLogin),
			formatTime(session.LastLogout))
	}
	return nil
}

func forceLogout(ctx context.Context, sm *appservices.ServiceManager, username string) error {
	user, err := sm.UserService.ForceLogout(ctx, username)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded logout for %s at %s\n", user.Username, formatTime(user.LastLogout))
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
