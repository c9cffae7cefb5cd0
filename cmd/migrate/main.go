// cmd/migrate/main.go
//
// Operational migration tool. API startup only ever applies pending
// migrations; rollbacks and dirty-state repairs are deliberate actions and
// run through this binary instead.
//
// Actions: up, down (one step), version, status, force (-version N).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cardvault/cardvault-be/internal/adapters/db"
	"github.com/cardvault/cardvault-be/internal/pkg/config"
)

func main() {
	var (
		action       = flag.String("action", "status", "Migration action: up, down, version, status, force")
		forceVersion = flag.Int("version", -1, "Target version for the force action")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	migrator, err := db.NewMigrator(&db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}, logger)
	if err != nil {
		logger.Error("failed to create migrator", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer migrator.Close()

	ctx := context.Background()

	switch *action {
	case "up":
		err = migrator.Up(ctx)

	case "down":
		err = migrator.Down(ctx)

	case "version":
		var (
			version uint
			dirty   bool
		)
		version, dirty, err = migrator.Version(ctx)
		if err == nil {
			fmt.Printf("version: %d dirty: %t\n", version, dirty)
		}

	case "status":
		var status *db.MigrationStatus
		status, err = migrator.Status(ctx)
		if err == nil {
			out, _ := json.MarshalIndent(status, "", "  ")
			fmt.Println(string(out))
		}

	case "force":
		if *forceVersion < 0 {
			logger.Error("force requires -version")
			os.Exit(1)
		}
		err = migrator.Force(ctx, *forceVersion)

	default:
		logger.Error("unknown action", slog.String("action", *action))
		os.Exit(1)
	}

	if err != nil {
		logger.Error("migration action failed",
			slog.String("action", *action),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}
