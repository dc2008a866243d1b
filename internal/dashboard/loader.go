package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"club-dashboard-backend/internal/club"
)

// Source fetches the raw feeds. clubapi.Client satisfies it.
type Source interface {
	Players(ctx context.Context) ([]club.Player, error)
	Teams(ctx context.Context) ([]club.Team, error)
	Matches(ctx context.Context) ([]club.Match, error)
	Transactions(ctx context.Context) ([]club.Transaction, error)
}

// Loader fetches every feed concurrently and builds a snapshot once all of
// them have arrived.
type Loader struct {
	src Source
	now func() time.Time
}

// NewLoader creates a Loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{src: src, now: time.Now}
}

// WithClock overrides the clock used to capture "now".
func (l *Loader) WithClock(now func() time.Time) *Loader {
	l.now = now
	return l
}

// Fetch loads all four collections. If any fetch fails the others are
// cancelled and no collections are returned.
func (l *Loader) Fetch(ctx context.Context) (Collections, error) {
	var c Collections
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		players, err := l.src.Players(gctx)
		if err != nil {
			return fmt.Errorf("fetching players: %w", err)
		}
		c.Players = players
		return nil
	})
	g.Go(func() error {
		teams, err := l.src.Teams(gctx)
		if err != nil {
			return fmt.Errorf("fetching teams: %w", err)
		}
		c.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := l.src.Matches(gctx)
		if err != nil {
			return fmt.Errorf("fetching matches: %w", err)
		}
		c.Matches = matches
		return nil
	})
	g.Go(func() error {
		txs, err := l.src.Transactions(gctx)
		if err != nil {
			return fmt.Errorf("fetching transactions: %w", err)
		}
		c.Transactions = txs
		return nil
	})

	if err := g.Wait(); err != nil {
		return Collections{}, err
	}
	return c, nil
}

// Load fetches the feeds and builds a snapshot. There is no partial result:
// on error the snapshot is the zero value.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	c, err := l.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Build(c, l.now()), nil
}
