package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/config"
)

// loadAppConfig loads the application configuration from defaults, an
// optional config.yaml and TASKFLOW_* environment variables.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The logger is not configured yet, so this goes through the default one
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"auto_migrate", cfg.Database.AutoMigrate)

	slog.Debug("Listing cache configuration", "listing_ttl", cfg.Cache.ListingTTL)

	// Secrets are reported as present, never by value
	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url_present", true)
	}
	if cfg.Auth.JWTSecret != "" {
		slog.Debug("Auth configuration", "jwt_secret_present", true)
	}

	return cfg, nil
}
