package main

import (
	"github.com/shopspring/decimal"

	"club-dashboard-backend/internal/club"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// matchesResponse is the schedule screen: fixtures still to come and played
// or undated ones.
type matchesResponse struct {
	Upcoming []club.Match `json:"upcoming"`
	Past     []club.Match `json:"past"`
}

// financeResponse is the finance screen.
type financeResponse struct {
	Transactions []club.Transaction `json:"transactions"`
	TotalRevenue decimal.Decimal    `json:"total_revenue"`
	PlayerNames  map[int]string     `json:"player_names"`
}

type initiateResponse struct {
	RedirectURL string `json:"redirect_url"`
}
