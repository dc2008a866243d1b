// Package audit keeps a trail of payment initiations and verifications so
// declined payments, unrecognized gateway answers and verification errors can
// be told apart after the fact.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"club-dashboard-backend/internal/payment"
)

// Attempt is one stored payment event.
type Attempt struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	SessionID     string    `json:"session_id"`
	TransactionID *int      `json:"transaction_id"`
	CorrelationID *string   `json:"correlation_id"`
	State         string    `json:"state"`
	Cause         *string   `json:"cause"`
	GatewayStatus *string   `json:"gateway_status"`
	Detail        *string   `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

// Filter narrows List.
type Filter struct {
	TransactionID int
	CorrelationID string
	Limit         int
}

const defaultLimit = 100

// Store writes and reads payment attempts in Postgres.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database. The payment_attempts table must already
// exist.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v > 0}
}

// Record implements payment.Recorder.
func (s *Store) Record(ctx context.Context, e payment.Event) error {
	const query = `
		INSERT INTO payment_attempts (kind, session_id, transaction_id, correlation_id, state, cause, gateway_status, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query,
		e.Kind, e.SessionID, nullInt(e.TransactionID), nullString(e.CorrelationID),
		string(e.State), nullString(string(e.Cause)), nullString(e.GatewayStatus), nullString(e.Detail), at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording payment attempt: %w", err)
	}
	return nil
}

// List returns the newest attempts first. Verify events carry only the
// correlation id, so a transaction filter also matches the verifications of
// that transaction's initiations.
func (s *Store) List(ctx context.Context, f Filter) ([]Attempt, error) {
	query := `
		SELECT id, kind, session_id, transaction_id, correlation_id, state, cause, gateway_status, detail, created_at
		FROM payment_attempts
	`
	var (
		where string
		args  []any
	)
	switch {
	case f.TransactionID > 0:
		where = `
		WHERE transaction_id = $1
		   OR correlation_id IN (SELECT correlation_id FROM payment_attempts WHERE transaction_id = $1 AND correlation_id IS NOT NULL)
	`
		args = append(args, f.TransactionID)
	case f.CorrelationID != "":
		where = `
		WHERE correlation_id = $1
	`
		args = append(args, f.CorrelationID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	args = append(args, limit)
	query += where + fmt.Sprintf("ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payment attempts: %w", err)
	}
	defer rows.Close()

	// ensure empty array ([]) instead of null when no rows
	attempts := make([]Attempt, 0)
	for rows.Next() {
		var (
			a             Attempt
			txID          sql.NullInt64
			correlationID sql.NullString
			cause         sql.NullString
			gatewayStatus sql.NullString
			detail        sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Kind, &a.SessionID, &txID, &correlationID, &a.State, &cause, &gatewayStatus, &detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment attempt: %w", err)
		}
		if txID.Valid {
			v := int(txID.Int64)
			a.TransactionID = &v
		}
		a.CorrelationID = stringPtr(correlationID)
		a.Cause = stringPtr(cause)
		a.GatewayStatus = stringPtr(gatewayStatus)
		a.Detail = stringPtr(detail)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing payment attempts: %w", err)
	}
	return attempts, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
