// Command migrate applies the SQL migrations in migrations/.
//
//	go run ./cmd/migrate              # apply pending migrations
//	go run ./cmd/migrate -down        # roll back everything
//	go run ./cmd/migrate -steps -1    # roll back one
//	go run ./cmd/migrate -force 1     # mark version 1 clean
package main

import (
	"flag"
	"time"

	"github.com/talentpad/presale/internal/config"
	"github.com/talentpad/presale/internal/db/migrations"
	"github.com/talentpad/presale/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel)

	var (
		dbURL     = flag.String("db", "", "Database URL (defaults to DB_* env vars)")
		migPath   = flag.String("path", "file://migrations", "Path to migration files")
		down      = flag.Bool("down", false, "Roll back all migrations")
		steps     = flag.Int("steps", 0, "Number of migrations to apply (negative rolls back)")
		force     = flag.Int("force", -1, "Force a specific version")
		retries   = flag.Int("retries", 5, "Number of connection retries")
		retryWait = flag.Duration("retry-wait", 3*time.Second, "Wait time between retries")
	)
	flag.Parse()

	url := cfg.DBOptions().URL()
	if *dbURL != "" {
		url = *dbURL
	}

	service, err := migrations.NewMigrationService(migrations.Config{
		MigrationsPath: *migPath,
		DatabaseURL:    url,
		RetryAttempts:  *retries,
		RetryDelay:     *retryWait,
	})
	if err != nil {
		logger.Fatalf("Failed to create migration service: %v", err)
	}
	defer func() {
		if err := service.Close(); err != nil {
			logger.Warnf("Closing migration service: %v", err)
		}
	}()

	switch {
	case *force >= 0:
		if err := service.Force(*force); err != nil {
			logger.Fatalf("Failed to force version %d: %v", *force, err)
		}
		logger.Infof("Forced version to %d", *force)
		return
	case *steps != 0:
		if err := service.Steps(*steps); err != nil {
			logger.Fatalf("Failed to apply %d steps: %v", *steps, err)
		}
	case *down:
		if err := service.Down(); err != nil {
			logger.Fatalf("Migration rollback failed: %v", err)
		}
	default:
		if err := service.Up(); err != nil {
			logger.Fatalf("Migration failed: %v", err)
		}
	}

	version, dirty, err := service.Version()
	if err != nil {
		logger.Warnf("Could not read migration version: %v", err)
		return
	}
	logger.InfoWithFields("Migration state", logger.Fields{"version": version, "dirty": dirty})
}
