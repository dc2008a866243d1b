package main

import (
	"context"

	"github.com/rs/zerolog"

	"club-dashboard-backend/internal/config"
)

// setupDatabase creates the payment audit tables.
func setupDatabase(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) error {
	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Msg("Creating database schema...")
	if err := ensureSchema(ctx, db); err != nil {
		return err
	}

	cnt, err := countAttempts(ctx, db)
	if err != nil {
		return err
	}
	log.Info().Int("payment_attempts", cnt).Msg("Schema created successfully")
	return nil
}
