package main

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS payment_attempts (
		id BIGSERIAL PRIMARY KEY,
		kind VARCHAR(20) NOT NULL,
		session_id VARCHAR(64) NOT NULL,
		transaction_id INTEGER,
		correlation_id VARCHAR(255),
		state VARCHAR(20) NOT NULL,
		cause VARCHAR(40),
		gateway_status VARCHAR(100),
		detail TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_payment_attempts_transaction ON payment_attempts(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_payment_attempts_correlation ON payment_attempts(correlation_id);
	CREATE INDEX IF NOT EXISTS idx_payment_attempts_created ON payment_attempts(created_at DESC);
`

func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// countAttempts reports how many payment attempts are stored.
func countAttempts(ctx context.Context, db *sql.DB) (int, error) {
	var cnt int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payment_attempts`).Scan(&cnt); err != nil {
		return 0, fmt.Errorf("checking payment attempts count: %w", err)
	}
	return cnt, nil
}
