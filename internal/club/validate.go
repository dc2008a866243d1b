package club

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("validation failed")

// ValidationError describes a form field that was rejected before submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Validate checks the fixture rules the schedule form enforces.
func (m Match) Validate() error {
	if m.Team1 == nil {
		return invalid("team1", "team1 is required")
	}
	if _, ok := m.When(); !ok {
		return invalid("date", "a valid match date is required")
	}

	hasTeam2 := m.Team2 != nil
	hasOpponent := !m.IsInternal()
	switch {
	case hasTeam2 && hasOpponent:
		return invalid("team2", "set either team2 or external_opponent, not both")
	case !hasTeam2 && !hasOpponent:
		return invalid("team2", "team2 or external_opponent is required")
	case hasTeam2 && *m.Team2 == *m.Team1:
		return invalid("team2", "teams cannot be the same")
	}

	result := ""
	if m.Settled() {
		result = *m.Result
	}
	switch result {
	case ResultWin, ResultLoss, ResultDraw:
		if m.Winner == nil {
			return invalid("winner", "winner must be selected")
		}
	case "", ResultCancelled:
		if m.Winner != nil {
			return invalid("winner", "winner is only allowed for completed matches")
		}
	default:
		return invalid("result", fmt.Sprintf("unknown result %q", result))
	}
	return nil
}

// PrepareTransaction validates a "Record Payment" submission and fills in
// due_date from payment_date when it is missing.
func PrepareTransaction(t Transaction) (Transaction, error) {
	if t.Player <= 0 {
		return t, invalid("player", "player is required")
	}
	amount, err := t.Amount.Decimal()
	if err != nil {
		return t, invalid("amount", "amount must be a number")
	}
	if amount.IsNegative() {
		return t, invalid("amount", "amount must not be negative")
	}
	t.Category = strings.ToLower(strings.TrimSpace(t.Category))
	if t.Category == "" {
		return t, invalid("category", "category is required")
	}
	if !slices.Contains(categories, t.Category) {
		return t, invalid("category", fmt.Sprintf("unknown category %q", t.Category))
	}
	if !t.PaymentDate.Valid() {
		return t, invalid("payment_date", "payment_date is required")
	}
	if !t.DueDate.Valid() {
		t.DueDate = t.PaymentDate
	}
	return t, nil
}

// PrepareTeam validates a team and makes sure the captain is in the squad.
func PrepareTeam(t Team) (Team, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return t, invalid("name", "team name is required")
	}
	squad := slices.Clone(t.PlayerIDs)
	if t.Captain != nil && !slices.Contains(squad, *t.Captain) {
		squad = append(squad, *t.Captain)
	}
	t.PlayerIDs = squad
	return t, nil
}

// PrepareInventoryItem validates an item. A missing available quantity is
// derived from the other counters and never goes below zero.
func PrepareInventoryItem(item InventoryItem) (InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return item, invalid("name", "name is required")
	}
	if item.Category == nil || *item.Category <= 0 {
		return item, invalid("category", "please select a category")
	}
	if item.AvailableQuantity == nil {
		derived := item.Quantity - item.DistributedQuantity - item.MissingQuantity - item.DestroyedQuantity
		derived = max(derived, 0)
		item.AvailableQuantity = &derived
	}
	if *item.AvailableQuantity < 0 {
		return item, invalid("available_quantity", "available quantity must not be negative")
	}
	if item.Cost.IsZero() {
		item.Cost = AmountFromDecimal(decimal.Zero)
	}
	if _, err := item.Cost.Decimal(); err != nil {
		return item, invalid("cost", "cost must be a number")
	}
	return item, nil
}

// PreparePlayer validates a player registration or edit.
func PreparePlayer(p Player) (Player, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" {
		return p, invalid("first_name", "first name is required")
	}
	if p.Age != nil && *p.Age < 0 {
		return p, invalid("age", "age must not be negative")
	}
	return p, nil
}
