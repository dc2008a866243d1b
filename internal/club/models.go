// Package club holds the entities exchanged with the club REST backend.
package club

import (
	"encoding/json"
	"strings"
	"time"
)

// Transaction categories offered by the "Record Payment" form. The backend
// stores any string; PrepareTransaction only lets these through.
const (
	CategoryRegistration = "registration"
	CategoryMonthly      = "monthly"
	CategoryTournament   = "tournament"
	CategoryFine         = "fine"
)

var categories = []string{CategoryRegistration, CategoryMonthly, CategoryTournament, CategoryFine}

// Match results. An empty result means the match is still scheduled.
const (
	ResultWin       = "win"
	ResultLoss      = "loss"
	ResultDraw      = "draw"
	ResultCancelled = "cancelled"
)

// Player is a club member.
type Player struct {
	ID               int             `json:"id"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Age              *int            `json:"age,omitempty"`
	Role             string          `json:"role,omitempty"`
	PhoneNumber      string          `json:"phone_number,omitempty"`
	MembershipActive bool            `json:"membership_active"`
	Teams            json.RawMessage `json:"teams,omitempty"`
	CaptainOf        json.RawMessage `json:"captain_of,omitempty"`
}

// FullName joins first and last name.
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Team is a squad of players.
type Team struct {
	ID        int             `json:"id,omitempty"`
	Name      string          `json:"name"`
	Captain   *int            `json:"captain"`
	PlayerIDs []int           `json:"player_ids,omitempty"`
	Players   json.RawMessage `json:"players,omitempty"`
}

// Ground is a venue matches can be scheduled at.
type Ground struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// Match is a fixture between team1 and either team2 or an external opponent.
type Match struct {
	ID               int       `json:"id,omitempty"`
	DateTime         Timestamp `json:"date_time"`
	Date             Timestamp `json:"date"`
	Venue            string    `json:"venue,omitempty"`
	Ground           *int      `json:"ground,omitempty"`
	Team1            *int      `json:"team1"`
	Team2            *int      `json:"team2"`
	ExternalOpponent *string   `json:"external_opponent"`
	Result           *string   `json:"result"`
	Winner           *int      `json:"winner"`
	Status           string    `json:"status,omitempty"`
}

// When returns the kick-off instant. The dashboard feed carries date_time
// while the fixtures feed carries date; date_time wins when both are set.
func (m Match) When() (time.Time, bool) {
	if t, ok := m.DateTime.Time(); ok {
		return t, true
	}
	return m.Date.Time()
}

// Settled reports whether a result has been recorded.
func (m Match) Settled() bool {
	return m.Result != nil && *m.Result != ""
}

// IsInternal reports whether both sides are club teams.
func (m Match) IsInternal() bool {
	return m.ExternalOpponent == nil || strings.TrimSpace(*m.ExternalOpponent) == ""
}

// Transaction is an amount owed or paid by a player.
type Transaction struct {
	ID          int    `json:"id"`
	Player      int    `json:"player"`
	Amount      Amount `json:"amount"`
	Category    string `json:"category"`
	PaymentDate Date   `json:"payment_date"`
	DueDate     Date   `json:"due_date"`
	Paid        bool   `json:"paid"`
}

// InventoryItem is a piece of club equipment.
type InventoryItem struct {
	ID                  int    `json:"id,omitempty"`
	Name                string `json:"name"`
	Category            *int   `json:"category"`
	Quantity            int    `json:"quantity"`
	AvailableQuantity   *int   `json:"available_quantity"`
	DistributedQuantity int    `json:"distributed_quantity"`
	MissingQuantity     int    `json:"missing_quantity"`
	DestroyedQuantity   int    `json:"destroyed_quantity"`
	Type                string `json:"type,omitempty"`
	Cost                Amount `json:"cost"`
	Description         string `json:"description,omitempty"`
}

// InventoryCategory groups inventory items.
type InventoryCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
