package clubapi

import (
	"context"
	"fmt"
	"net/http"

	"club-dashboard-backend/internal/club"
)

const (
	pathLogin               = "api-token-auth/"
	pathPlayers             = "api/players/"
	pathTeams               = "api/teams/"
	pathMatches             = "api/matches/"
	pathGrounds             = "api/grounds/"
	pathInventory           = "api/inventory-items/"
	pathInventoryCategories = "api/inventory-categories/"
	pathTransactions        = "api/transactions/"
)

func item(base string, id int) string {
	return fmt.Sprintf("%s%d/", base, id)
}

// Login exchanges credentials for an auth token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	in := map[string]string{"username": username, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, pathLogin, in, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login: backend returned no token")
	}
	return out.Token, nil
}

func (c *Client) Players(ctx context.Context) ([]club.Player, error) {
	return list[club.Player](ctx, c, pathPlayers)
}

func (c *Client) CreatePlayer(ctx context.Context, p club.Player) (club.Player, error) {
	var out club.Player
	err := c.do(ctx, http.MethodPost, pathPlayers, p, &out)
	return out, err
}

func (c *Client) UpdatePlayer(ctx context.Context, id int, p club.Player) (club.Player, error) {
	var out club.Player
	err := c.do(ctx, http.MethodPut, item(pathPlayers, id), p, &out)
	return out, err
}

func (c *Client) DeletePlayer(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, item(pathPlayers, id), nil, nil)
}

func (c *Client) Teams(ctx context.Context) ([]club.Team, error) {
	return list[club.Team](ctx, c, pathTeams)
}

func (c *Client) CreateTeam(ctx context.Context, t club.Team) (club.Team, error) {
	var out club.Team
	err := c.do(ctx, http.MethodPost, pathTeams, t, &out)
	return out, err
}

func (c *Client) UpdateTeam(ctx context.Context, id int, t club.Team) (club.Team, error) {
	var out club.Team
	err := c.do(ctx, http.MethodPut, item(pathTeams, id), t, &out)
	return out, err
}

func (c *Client) DeleteTeam(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, item(pathTeams, id), nil, nil)
}

func (c *Client) Matches(ctx context.Context) ([]club.Match, error) {
	return list[club.Match](ctx, c, pathMatches)
}

func (c *Client) CreateMatch(ctx context.Context, m club.Match) (club.Match, error) {
	var out club.Match
	err := c.do(ctx, http.MethodPost, pathMatches, m, &out)
	return out, err
}

func (c *Client) UpdateMatch(ctx context.Context, id int, m club.Match) (club.Match, error) {
	var out club.Match
	err := c.do(ctx, http.MethodPut, item(pathMatches, id), m, &out)
	return out, err
}

func (c *Client) DeleteMatch(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, item(pathMatches, id), nil, nil)
}

func (c *Client) Grounds(ctx context.Context) ([]club.Ground, error) {
	return list[club.Ground](ctx, c, pathGrounds)
}

func (c *Client) Inventory(ctx context.Context) ([]club.InventoryItem, error) {
	return list[club.InventoryItem](ctx, c, pathInventory)
}

func (c *Client) InventoryCategories(ctx context.Context) ([]club.InventoryCategory, error) {
	return list[club.InventoryCategory](ctx, c, pathInventoryCategories)
}

func (c *Client) CreateInventoryItem(ctx context.Context, i club.InventoryItem) (club.InventoryItem, error) {
	var out club.InventoryItem
	err := c.do(ctx, http.MethodPost, pathInventory, i, &out)
	return out, err
}

func (c *Client) UpdateInventoryItem(ctx context.Context, id int, i club.InventoryItem) (club.InventoryItem, error) {
	var out club.InventoryItem
	err := c.do(ctx, http.MethodPut, item(pathInventory, id), i, &out)
	return out, err
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, item(pathInventory, id), nil, nil)
}

func (c *Client) Transactions(ctx context.Context) ([]club.Transaction, error) {
	return list[club.Transaction](ctx, c, pathTransactions)
}

// Transaction fetches one transaction. A missing id matches ErrNotFound.
func (c *Client) Transaction(ctx context.Context, id int) (club.Transaction, error) {
	var out club.Transaction
	err := c.do(ctx, http.MethodGet, item(pathTransactions, id), nil, &out)
	return out, err
}

// RecordTransaction creates a transaction, typically an unpaid invoice or an
// immediate paid record.
func (c *Client) RecordTransaction(ctx context.Context, t club.Transaction) (club.Transaction, error) {
	var out club.Transaction
	err := c.do(ctx, http.MethodPost, pathTransactions, t, &out)
	return out, err
}
