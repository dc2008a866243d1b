package dashboard

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-dashboard-backend/internal/club"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func match(id int, offset time.Duration) club.Match {
	return club.Match{ID: id, DateTime: club.NewTimestamp(now.Add(offset))}
}

func tx(id int, amount string, paid bool, paymentDate string) club.Transaction {
	return club.Transaction{
		ID:          id,
		Player:      id * 10,
		Amount:      club.NewAmount(amount),
		Category:    club.CategoryMonthly,
		PaymentDate: club.ParseDate(paymentDate),
		Paid:        paid,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ids[T interface{ club.Match | club.Transaction }](items []T) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		switch v := any(it).(type) {
		case club.Match:
			out = append(out, v.ID)
		case club.Transaction:
			out = append(out, v.ID)
		}
	}
	return out
}

func TestTotalRevenue_Example(t *testing.T) {
	txs := []club.Transaction{
		tx(1, "500", true, "2025-01-01"),
		tx(2, "300", false, "2025-01-02"),
		tx(3, "200.50", true, "2025-01-03"),
	}
	total, invalid := TotalRevenue(txs)
	assert.True(t, total.Equal(dec("700.50")), "got %s", total)
	assert.Zero(t, invalid)
}

func TestTotalRevenue_LenientParsing(t *testing.T) {
	txs := []club.Transaction{
		tx(1, "100", true, ""),
		tx(2, "abc", true, ""),
		{ID: 3, Paid: true},
		tx(4, "oops", false, ""),
	}
	total, invalid := TotalRevenue(txs)
	assert.True(t, total.Equal(dec("100")))
	assert.Equal(t, 2, invalid, "unpaid garbage is never parsed")
}

func TestTotalRevenue_IgnoresOrderAndUnpaid(t *testing.T) {
	txs := []club.Transaction{
		tx(1, "10.10", true, ""),
		tx(2, "20.20", true, ""),
		tx(3, "30.30", true, ""),
		tx(4, "5", false, ""),
	}
	want, _ := TotalRevenue(txs)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]club.Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		shuffled = append(shuffled, tx(100+i, "999", false, ""))
		got, _ := TotalRevenue(shuffled)
		assert.True(t, got.Equal(want))
	}
	assert.True(t, want.Equal(dec("60.60")))
}

func TestActiveMembers(t *testing.T) {
	players := []club.Player{
		{ID: 1, MembershipActive: true},
		{ID: 2},
		{ID: 3, MembershipActive: true},
	}
	assert.Equal(t, 2, ActiveMembers(players))
	assert.Zero(t, ActiveMembers(nil))
}

func TestUpcoming_StrictlyAfterNowSortedAndBounded(t *testing.T) {
	matches := []club.Match{
		match(1, 72*time.Hour),
		match(2, -time.Hour),
		match(3, 0), // exactly now is not upcoming
		match(4, time.Hour),
		match(5, 24*time.Hour),
		match(6, 48*time.Hour),
	}
	got := Upcoming(matches, now, UpcomingLimit)
	assert.Equal(t, []int{4, 5, 6}, ids(got))

	all := Upcoming(matches, now, 0)
	assert.Equal(t, []int{4, 5, 6, 1}, ids(all))
}

func TestPartition_IsExhaustiveAndDisjoint(t *testing.T) {
	matches := []club.Match{
		match(1, 72*time.Hour),
		match(2, -time.Hour),
		match(3, 0),
		match(4, time.Hour),
		{ID: 5, Date: club.ParseTimestamp("TBD")},
		{ID: 6, Date: club.NewTimestamp(now.Add(-48 * time.Hour))},
	}
	upcoming, past := Partition(matches, now)

	assert.Equal(t, []int{4, 1}, ids(upcoming))
	assert.Equal(t, []int{3, 2, 6, 5}, ids(past), "past is newest first, undated last")

	seen := map[int]int{}
	for _, id := range append(ids(upcoming), ids(past)...) {
		seen[id]++
	}
	require.Len(t, seen, len(matches))
	for id, n := range seen {
		assert.Equal(t, 1, n, "match %d appears in both halves", id)
	}
}

func TestRecentTransactions_NewestFirstIncludingUnpaid(t *testing.T) {
	txs := []club.Transaction{
		tx(1, "10", true, "2025-01-01"),
		tx(2, "10", false, "2025-03-01"),
		tx(3, "10", true, ""),
		tx(4, "10", true, "2025-02-01"),
		tx(5, "10", true, "2025-04-01"),
		tx(6, "10", true, "2025-01-15"),
	}
	got := RecentTransactions(txs, RecentLimit)
	assert.Equal(t, []int{5, 2, 4, 6}, ids(got))
	assert.Equal(t, 1, txs[0].ID, "input must not be reordered")

	all := RecentTransactions(txs, 0)
	assert.Equal(t, 3, all[len(all)-1].ID, "undated transactions sort last")
}

func TestPendingInvoices(t *testing.T) {
	dueOnly := club.Transaction{ID: 7, Amount: club.NewAmount("40"), DueDate: club.NewDate(2025, 2, 10)}
	txs := []club.Transaction{
		tx(1, "10", false, "2025-03-01"),
		tx(2, "10", true, "2025-01-01"),
		{ID: 3, Amount: club.NewAmount("5")},
		tx(4, "10", false, "2025-01-20"),
		dueOnly,
		tx(5, "10", false, "2025-01-20"),
	}
	got := PendingInvoices(txs)
	assert.Equal(t, []int{4, 5, 7, 1, 3}, ids(got))
	for _, p := range got {
		assert.False(t, p.Paid)
	}

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		shuffled := append([]club.Transaction(nil), txs...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, ids(got), ids(PendingInvoices(shuffled)))
	}
}

func TestPendingInvoices_EmptyIsNotNil(t *testing.T) {
	got := PendingInvoices([]club.Transaction{tx(1, "1", true, "2025-01-01")})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuild_IsIdempotent(t *testing.T) {
	c := Collections{
		Players: []club.Player{{ID: 1, MembershipActive: true}, {ID: 2}},
		Teams:   []club.Team{{ID: 1, Name: "Colts"}},
		Matches: []club.Match{match(1, time.Hour), match(2, -time.Hour)},
		Transactions: []club.Transaction{
			tx(1, "500", true, "2025-01-01"),
			tx(2, "300", false, "2025-01-02"),
			tx(3, "200.50", true, "2025-01-03"),
		},
	}
	first := Build(c, now)
	second := Build(c, now)
	assert.Equal(t, first, second)

	assert.Equal(t, 2, first.PlayerCount)
	assert.Equal(t, 1, first.ActiveMembers)
	assert.Equal(t, 1, first.TeamCount)
	assert.Equal(t, []int{1}, ids(first.UpcomingMatches))
	assert.Equal(t, []int{3, 2, 1}, ids(first.RecentTransactions))
	assert.Equal(t, []int{2}, ids(first.PendingInvoices))
	assert.True(t, first.TotalRevenue.Equal(dec("700.50")))
	assert.Equal(t, now, first.GeneratedAt)
}

func TestPlayerNames(t *testing.T) {
	names := PlayerNames([]club.Player{{ID: 4, FirstName: "Asha", LastName: "Rao"}, {ID: 5, FirstName: "Ben"}})
	assert.Equal(t, map[int]string{4: "Asha Rao", 5: "Ben"}, names)
}
