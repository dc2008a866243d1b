package club

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "string", input: `"200.50"`, want: "200.5"},
		{name: "number", input: `500`, want: "500"},
		{name: "padded string", input: `" 12.00 "`, want: "12"},
		{name: "garbage", input: `"n/a"`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			require.NoError(t, json.Unmarshal([]byte(tt.input), &a))
			d, err := a.Decimal()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
		})
	}
}

func TestAmount_MarshalKeepsRawText(t *testing.T) {
	data, err := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: NewAmount("200.50")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"200.50","b":null}`, string(data))
}

func TestDate_Lenient(t *testing.T) {
	var tx Transaction
	err := json.Unmarshal([]byte(`{"id":1,"payment_date":"2025-03-04","due_date":null}`), &tx)
	require.NoError(t, err)

	got, ok := tx.PaymentDate.Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), got)
	assert.False(t, tx.DueDate.Valid())

	d := ParseDate("not a date")
	assert.False(t, d.Valid())
	assert.Equal(t, "not a date", d.String())

	d = ParseDate("2025-03-04T18:30:00Z")
	assert.Equal(t, "2025-03-04", d.String())
}

func TestDate_NonStringKeptAsText(t *testing.T) {
	var tx Transaction
	err := json.Unmarshal([]byte(`{"id":1,"payment_date":1714550400,"due_date":{"d":1}}`), &tx)
	require.NoError(t, err)
	assert.Equal(t, 1, tx.ID)
	assert.False(t, tx.PaymentDate.Valid())
	assert.Equal(t, "1714550400", tx.PaymentDate.String())
	assert.False(t, tx.DueDate.Valid())

	data, err := json.Marshal(tx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payment_date":"1714550400"`)
}

func TestTimestamp_NonStringKeptAsText(t *testing.T) {
	var m Match
	err := json.Unmarshal([]byte(`{"id":2,"date":"2025-06-01T10:00:00Z","date_time":1714550400}`), &m)
	require.NoError(t, err)
	_, ok := m.DateTime.Time()
	assert.False(t, ok)
	assert.Equal(t, "1714550400", m.DateTime.String())

	when, ok := m.When()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), when)
}

func TestAmountFromDecimal(t *testing.T) {
	a := AmountFromDecimal(decimal.RequireFromString("12.50"))
	d, err := a.Decimal()
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))
	assert.False(t, a.IsZero())
}

func TestDate_MarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Transaction{ID: 3, PaymentDate: NewDate(2025, 1, 9)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"payment_date":"2025-01-09"`)
	assert.Contains(t, string(data), `"due_date":null`)
}

func TestMatch_WhenPrefersDateTime(t *testing.T) {
	var m Match
	err := json.Unmarshal([]byte(`{"id":7,"date_time":"2025-06-01T10:00:00Z","date":"2025-05-01T10:00:00Z"}`), &m)
	require.NoError(t, err)
	when, ok := m.When()
	require.True(t, ok)
	assert.Equal(t, 6, int(when.Month()))

	m.DateTime = Timestamp{}
	when, ok = m.When()
	require.True(t, ok)
	assert.Equal(t, 5, int(when.Month()))

	m.Date = ParseTimestamp("soon")
	_, ok = m.When()
	assert.False(t, ok)
}
