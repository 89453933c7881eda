package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
)

// handleMigrations executes the -migrate command against db.
func handleMigrations(ctx context.Context, db *sql.DB, migrateCmd string, logger *slog.Logger) error {
	logger.Info("Executing migrations", "command", migrateCmd)
	return postgres.Migrate(ctx, db, migrateCmd, logger)
}
