// Package dashboard derives the overview statistics shown on the club
// dashboard from the raw players, teams, matches and transactions feeds.
//
// Every function here is pure: inputs are never modified and the same inputs
// (including the same "now") always produce the same output.
package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"club-dashboard-backend/internal/club"
)

const (
	// UpcomingLimit bounds the fixtures shown on the overview.
	UpcomingLimit = 3
	// RecentLimit bounds the payments shown on the overview.
	RecentLimit = 4
)

// Collections are the raw feeds a snapshot is computed from.
type Collections struct {
	Players      []club.Player
	Teams        []club.Team
	Matches      []club.Match
	Transactions []club.Transaction
}

// Snapshot is the derived overview. It has no identity of its own and is
// rebuilt from scratch on every load.
type Snapshot struct {
	PlayerCount        int                `json:"playerCount"`
	ActiveMembers      int                `json:"activeMembers"`
	TeamCount          int                `json:"teamCount"`
	UpcomingMatches    []club.Match       `json:"upcomingMatches"`
	RecentTransactions []club.Transaction `json:"recentTransactions"`
	PendingInvoices    []club.Transaction `json:"pendingInvoices"`
	TotalRevenue       decimal.Decimal    `json:"totalRevenue"`
	GeneratedAt        time.Time          `json:"generatedAt"`

	// InvalidAmounts counts paid transactions whose amount could not be
	// parsed and was summed as zero.
	InvalidAmounts int `json:"-"`
}

// Build computes a snapshot. now is captured once by the caller and used for
// every match comparison.
func Build(c Collections, now time.Time) Snapshot {
	revenue, invalid := TotalRevenue(c.Transactions)
	return Snapshot{
		PlayerCount:        len(c.Players),
		ActiveMembers:      ActiveMembers(c.Players),
		TeamCount:          len(c.Teams),
		UpcomingMatches:    Upcoming(c.Matches, now, UpcomingLimit),
		RecentTransactions: RecentTransactions(c.Transactions, RecentLimit),
		PendingInvoices:    PendingInvoices(c.Transactions),
		TotalRevenue:       revenue,
		GeneratedAt:        now,
		InvalidAmounts:     invalid,
	}
}

// ActiveMembers counts players with an active membership.
func ActiveMembers(players []club.Player) int {
	n := 0
	for _, p := range players {
		if p.MembershipActive {
			n++
		}
	}
	return n
}

func isUpcoming(m club.Match, now time.Time) bool {
	when, ok := m.When()
	return ok && when.After(now)
}

func byKickoff(a, b club.Match) int {
	ta, _ := a.When()
	tb, _ := b.When()
	if c := ta.Compare(tb); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Upcoming returns matches strictly after now, soonest first. A limit of zero
// or less means no bound.
func Upcoming(matches []club.Match, now time.Time, limit int) []club.Match {
	out := make([]club.Match, 0, len(matches))
	for _, m := range matches {
		if isUpcoming(m, now) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, byKickoff)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Past returns every match that is not upcoming, most recent first. Matches
// without a usable date are past and sort last.
func Past(matches []club.Match, now time.Time) []club.Match {
	out := make([]club.Match, 0, len(matches))
	for _, m := range matches {
		if !isUpcoming(m, now) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b club.Match) int {
		_, aok := a.When()
		_, bok := b.When()
		if aok != bok {
			if aok {
				return -1
			}
			return 1
		}
		return byKickoff(b, a)
	})
	return out
}

// Partition splits matches for the fixtures screen. The two halves are
// disjoint and together contain every match.
func Partition(matches []club.Match, now time.Time) (upcoming, past []club.Match) {
	return Upcoming(matches, now, 0), Past(matches, now)
}

// TotalRevenue sums the amount of every paid transaction. Amounts that do
// not parse are treated as zero; invalid reports how many there were.
func TotalRevenue(txs []club.Transaction) (total decimal.Decimal, invalid int) {
	total = decimal.Zero
	for _, t := range txs {
		if !t.Paid {
			continue
		}
		amount, err := t.Amount.Decimal()
		if err != nil {
			invalid++
			continue
		}
		total = total.Add(amount)
	}
	return total, invalid
}

// compareDates orders present dates ascending and puts missing dates last.
func compareDates(a, b club.Date) int {
	ta, aok := a.Time()
	tb, bok := b.Time()
	switch {
	case aok && bok:
		return ta.Compare(tb)
	case aok:
		return -1
	case bok:
		return 1
	}
	return 0
}

// RecentTransactions returns the latest transactions by payment date. Paid and
// unpaid transactions are both included; transactions without a payment date
// come last.
func RecentTransactions(txs []club.Transaction, limit int) []club.Transaction {
	out := append(make([]club.Transaction, 0, len(txs)), txs...)
	slices.SortStableFunc(out, func(a, b club.Transaction) int {
		_, aok := a.PaymentDate.Time()
		_, bok := b.PaymentDate.Time()
		if aok != bok {
			if aok {
				return -1
			}
			return 1
		}
		if c := compareDates(b.PaymentDate, a.PaymentDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// InvoiceDate is the date a pending invoice is ordered by: its payment date,
// or its due date when no payment date was recorded.
func InvoiceDate(t club.Transaction) club.Date {
	if t.PaymentDate.Valid() {
		return t.PaymentDate
	}
	return t.DueDate
}

// PendingInvoices returns every unpaid transaction, oldest first by
// InvoiceDate. Invoices with neither date come last; ties keep id order.
func PendingInvoices(txs []club.Transaction) []club.Transaction {
	out := make([]club.Transaction, 0)
	for _, t := range txs {
		if !t.Paid {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b club.Transaction) int {
		if c := compareDates(InvoiceDate(a), InvoiceDate(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// PlayerNames maps player ids to display names for the finance table.
func PlayerNames(players []club.Player) map[int]string {
	names := make(map[int]string, len(players))
	for _, p := range players {
		names[p.ID] = p.FullName()
	}
	return names
}
