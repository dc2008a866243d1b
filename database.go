package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"club-dashboard-backend/internal/config"
)

// normalizeDatabaseURL rewrites postgresql:// to postgres:// and adds
// sslmode=disable when no sslmode is given.
func normalizeDatabaseURL(databaseURL string) string {
	if databaseURL == "" {
		return ""
	}
	if strings.HasPrefix(databaseURL, "postgresql:") {
		databaseURL = "postgres" + strings.TrimPrefix(databaseURL, "postgresql")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}
	return databaseURL
}

// openDB connects to Postgres, waiting for it to come up.
func openDB(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*sql.DB, error) {
	pgConfig, err := pgx.ParseConfig(normalizeDatabaseURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	maxRetries := max(cfg.MaxRetries, 1)
	retryDelay := cfg.RetryDelay

	for i := 0; i < maxRetries; i++ {
		db := stdlib.OpenDB(*pgConfig)
		err := db.PingContext(ctx)
		if err == nil {
			log.Info().Str("host", pgConfig.Host).Str("database", pgConfig.Database).Msg("Database connection established")
			return db, nil
		}
		db.Close()
		if i == maxRetries-1 || ctx.Err() != nil {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", i+1, err)
		}

		// Log the actual error every 10 attempts
		ev := log.Warn().Dur("retry_in", retryDelay).Int("attempt", i+1).Int("max_attempts", maxRetries)
		if i%10 == 0 || i < 5 {
			ev = ev.Err(err)
		}
		ev.Msg("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for database: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to database")
}
