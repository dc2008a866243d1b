package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-dashboard-backend/internal/payment"
)

var columns = []string{"id", "kind", "session_id", "transaction_id", "correlation_id", "state", "cause", "gateway_status", "detail", "created_at"}

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewStore(db), mock
}

func TestRecord_Initiate(t *testing.T) {
	store, mock := newMock(t)
	at := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO payment_attempts`).
		WithArgs("initiate", "sess-1", int64(42), "abc123", "loading", nil, nil, nil, at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Record(context.Background(), payment.Event{
		Kind:          payment.EventInitiate,
		SessionID:     "sess-1",
		TransactionID: 42,
		CorrelationID: "abc123",
		State:         payment.StateLoading,
		At:            at,
	})
	require.NoError(t, err)
}

func TestRecord_VerifyErrorKeepsCause(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO payment_attempts`).
		WithArgs("verify", "sess-1", nil, "abc123", "failure", "verify_error", nil, "connection reset", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	err := store.Record(context.Background(), payment.Event{
		Kind:          payment.EventVerify,
		SessionID:     "sess-1",
		CorrelationID: "abc123",
		State:         payment.StateFailure,
		Cause:         payment.CauseVerifyError,
		Detail:        "connection reset",
	})
	require.NoError(t, err)
}

func TestRecord_DatabaseError(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO payment_attempts`).WillReturnError(errors.New("connection refused"))

	err := store.Record(context.Background(), payment.Event{Kind: payment.EventVerify, SessionID: "s", State: payment.StateFailure})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording payment attempt")
}

func TestList_ByTransaction(t *testing.T) {
	store, mock := newMock(t)
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columns).
		AddRow(int64(2), "verify", "sess-1", nil, "abc123", "failure", "declined", "failed", nil, created.Add(time.Minute)).
		AddRow(int64(1), "initiate", "sess-1", int64(42), "abc123", "loading", nil, nil, nil, created)
	mock.ExpectQuery(`FROM payment_attempts\s+WHERE transaction_id = \$1`).
		WithArgs(42, 100).
		WillReturnRows(rows)

	got, err := store.List(context.Background(), Filter{TransactionID: 42})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "verify", got[0].Kind)
	assert.Nil(t, got[0].TransactionID)
	require.NotNil(t, got[0].Cause)
	assert.Equal(t, "declined", *got[0].Cause)

	require.NotNil(t, got[1].TransactionID)
	assert.Equal(t, 42, *got[1].TransactionID)
	assert.Nil(t, got[1].Cause)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`FROM payment_attempts`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := store.List(context.Background(), Filter{Limit: 5})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
