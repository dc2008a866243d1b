package club

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func kickoff() Timestamp {
	return NewTimestamp(time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC))
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.ErrorIs(t, err, ErrInvalid)
	return verr.Field
}

func TestMatchValidate(t *testing.T) {
	tests := []struct {
		name  string
		match Match
		field string
	}{
		{
			name:  "internal ok",
			match: Match{Date: kickoff(), Team1: intPtr(1), Team2: intPtr(2)},
		},
		{
			name:  "external ok",
			match: Match{Date: kickoff(), Team1: intPtr(1), ExternalOpponent: strPtr("Rovers")},
		},
		{
			name:  "missing team1",
			match: Match{Date: kickoff(), Team2: intPtr(2)},
			field: "team1",
		},
		{
			name:  "missing date",
			match: Match{Team1: intPtr(1), Team2: intPtr(2)},
			field: "date",
		},
		{
			name:  "same teams",
			match: Match{Date: kickoff(), Team1: intPtr(3), Team2: intPtr(3)},
			field: "team2",
		},
		{
			name:  "both opponents",
			match: Match{Date: kickoff(), Team1: intPtr(1), Team2: intPtr(2), ExternalOpponent: strPtr("Rovers")},
			field: "team2",
		},
		{
			name:  "no opponent",
			match: Match{Date: kickoff(), Team1: intPtr(1), ExternalOpponent: strPtr("  ")},
			field: "team2",
		},
		{
			name:  "settled without winner",
			match: Match{Date: kickoff(), Team1: intPtr(1), Team2: intPtr(2), Result: strPtr(ResultWin)},
			field: "winner",
		},
		{
			name:  "settled with winner",
			match: Match{Date: kickoff(), Team1: intPtr(1), Team2: intPtr(2), Result: strPtr(ResultDraw), Winner: intPtr(1)},
		},
		{
			name:  "cancelled with winner",
			match: Match{Date: kickoff(), Team1: intPtr(1), Team2: intPtr(2), Result: strPtr(ResultCancelled), Winner: intPtr(1)},
			field: "winner",
		},
		{
			name:  "unknown result",
			match: Match{Date: kickoff(), Team1: intPtr(1), Team2: intPtr(2), Result: strPtr("abandoned")},
			field: "result",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.match.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestPrepareTransaction(t *testing.T) {
	tx := Transaction{Player: 4, Amount: NewAmount("250"), Category: CategoryMonthly, PaymentDate: NewDate(2025, 2, 1)}
	got, err := PrepareTransaction(tx)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", got.DueDate.String())

	tx.DueDate = NewDate(2025, 2, 15)
	got, err = PrepareTransaction(tx)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-15", got.DueDate.String())
}

func TestPrepareTransaction_Rejects(t *testing.T) {
	base := Transaction{Player: 4, Amount: NewAmount("250"), Category: CategoryFine, PaymentDate: NewDate(2025, 2, 1)}

	noPlayer := base
	noPlayer.Player = 0
	_, err := PrepareTransaction(noPlayer)
	assert.Equal(t, "player", fieldOf(t, err))

	negative := base
	negative.Amount = NewAmount("-1")
	_, err = PrepareTransaction(negative)
	assert.Equal(t, "amount", fieldOf(t, err))

	garbage := base
	garbage.Amount = NewAmount("ten")
	_, err = PrepareTransaction(garbage)
	assert.Equal(t, "amount", fieldOf(t, err))

	noCategory := base
	noCategory.Category = " "
	_, err = PrepareTransaction(noCategory)
	assert.Equal(t, "category", fieldOf(t, err))

	unknown := base
	unknown.Category = "donation"
	_, err = PrepareTransaction(unknown)
	assert.Equal(t, "category", fieldOf(t, err))

	noDate := base
	noDate.PaymentDate = Date{}
	_, err = PrepareTransaction(noDate)
	assert.Equal(t, "payment_date", fieldOf(t, err))
}

func TestPrepareTransaction_NormalizesCategory(t *testing.T) {
	for _, category := range []string{CategoryRegistration, CategoryMonthly, CategoryTournament, CategoryFine} {
		tx := Transaction{Player: 1, Amount: NewAmount("10"), Category: " " + strings.ToUpper(category) + " ", PaymentDate: NewDate(2025, 3, 1)}
		got, err := PrepareTransaction(tx)
		require.NoError(t, err, category)
		assert.Equal(t, category, got.Category)
	}
}

func TestMatchValidate_EmptyResultIsScheduled(t *testing.T) {
	m := Match{Date: kickoff(), Team1: intPtr(1), Team2: intPtr(2), Result: strPtr("")}
	assert.False(t, m.Settled())
	assert.NoError(t, m.Validate())

	m.Winner = intPtr(1)
	assert.Equal(t, "winner", fieldOf(t, m.Validate()))

	m.Result = strPtr(ResultDraw)
	assert.True(t, m.Settled())
	assert.NoError(t, m.Validate())
}

func TestPrepareTeam_AddsCaptainToSquad(t *testing.T) {
	squad := []int{1, 2}
	got, err := PrepareTeam(Team{Name: " Colts ", Captain: intPtr(9), PlayerIDs: squad})
	require.NoError(t, err)
	assert.Equal(t, "Colts", got.Name)
	assert.Equal(t, []int{1, 2, 9}, got.PlayerIDs)
	assert.Equal(t, []int{1, 2}, squad, "input squad must not be modified")

	got, err = PrepareTeam(Team{Name: "Colts", Captain: intPtr(2), PlayerIDs: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got.PlayerIDs)

	_, err = PrepareTeam(Team{})
	assert.Equal(t, "name", fieldOf(t, err))
}

func TestPrepareInventoryItem(t *testing.T) {
	got, err := PrepareInventoryItem(InventoryItem{
		Name:                "Helmets",
		Category:            intPtr(2),
		Quantity:            10,
		DistributedQuantity: 4,
		MissingQuantity:     1,
	})
	require.NoError(t, err)
	require.NotNil(t, got.AvailableQuantity)
	assert.Equal(t, 5, *got.AvailableQuantity)
	assert.Equal(t, "0", got.Cost.String())

	got, err = PrepareInventoryItem(InventoryItem{
		Name:              "Balls",
		Category:          intPtr(2),
		Quantity:          2,
		DestroyedQuantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, *got.AvailableQuantity)

	_, err = PrepareInventoryItem(InventoryItem{Name: "Pads"})
	assert.Equal(t, "category", fieldOf(t, err))

	_, err = PrepareInventoryItem(InventoryItem{Name: "Pads", Category: intPtr(1), AvailableQuantity: intPtr(-2)})
	assert.Equal(t, "available_quantity", fieldOf(t, err))
}

func TestPreparePlayer(t *testing.T) {
	got, err := PreparePlayer(Player{FirstName: " Asha ", LastName: "Rao "})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.FullName())

	_, err = PreparePlayer(Player{LastName: "Rao"})
	assert.Equal(t, "first_name", fieldOf(t, err))

	_, err = PreparePlayer(Player{FirstName: "Asha", Age: intPtr(-1)})
	assert.Equal(t, "age", fieldOf(t, err))
}
