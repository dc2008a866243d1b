package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"club-dashboard-backend/internal/audit"
	"club-dashboard-backend/internal/club"
	"club-dashboard-backend/internal/clubapi"
	"club-dashboard-backend/internal/dashboard"
	"club-dashboard-backend/internal/logger"
	"club-dashboard-backend/internal/payment"
	"club-dashboard-backend/internal/session"
)

// server holds what the handlers need. db, redis and attempts are nil when
// the corresponding backing service is not configured.
type server struct {
	api      *clubapi.Client
	loader   *dashboard.Loader
	payments *payment.Service
	sessions session.Store
	attempts *audit.Store
	db       *sql.DB
	redis    *redis.Client
	log      zerolog.Logger
	now      func() time.Time
}

// healthCheck handles the health check endpoint
func (s *server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "club-dashboard",
	})
}

// backendError maps a failed backend call to a response. Validation errors
// and 4xx answers reach the user as-is; anything else is a bad gateway.
func backendError(c *gin.Context, err error) {
	var verr *club.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}
	var apiErr *clubapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		if json.Valid(apiErr.Body) {
			c.Data(apiErr.StatusCode, "application/json; charset=utf-8", apiErr.Body)
			return
		}
		c.JSON(apiErr.StatusCode, gin.H{"error": string(apiErr.Body)})
		return
	}
	log := logger.FromContext(c.Request.Context())
	log.Error().Err(err).Msg("club backend request failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// listHandler serves a backend collection unchanged.
func listHandler[T any](fetch func(context.Context) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := fetch(c.Request.Context())
		if err != nil {
			backendError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// deleteHandler removes one backend record by path id.
func deleteHandler(what string, del func(context.Context, int) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := del(c.Request.Context(), id); err != nil {
			backendError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": what + " deleted"})
	}
}

func (s *server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := s.api.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: token})
}

// getDashboard loads every feed and answers with the aggregated snapshot.
func (s *server) getDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	snap, err := s.loader.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load dashboard")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "Failed to load dashboard data.",
			"detail": err.Error(),
		})
		return
	}
	if snap.InvalidAmounts > 0 {
		log.Warn().Int("invalid_amounts", snap.InvalidAmounts).Msg("transactions with unparseable amounts counted as zero")
	}
	c.JSON(http.StatusOK, snap)
}

func (s *server) getMatches(c *gin.Context) {
	matches, err := s.api.Matches(c.Request.Context())
	if err != nil {
		backendError(c, err)
		return
	}
	upcoming, past := dashboard.Partition(matches, s.now())
	c.JSON(http.StatusOK, matchesResponse{Upcoming: upcoming, Past: past})
}

func (s *server) createMatch(c *gin.Context) {
	var m club.Match
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := m.Validate(); err != nil {
		backendError(c, err)
		return
	}
	created, err := s.api.CreateMatch(c.Request.Context(), m)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) updateMatch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var m club.Match
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := m.Validate(); err != nil {
		backendError(c, err)
		return
	}
	updated, err := s.api.UpdateMatch(c.Request.Context(), id, m)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// getTransactions serves the finance screen: every transaction, the revenue
// total and a player id to name index.
func (s *server) getTransactions(c *gin.Context) {
	var (
		txs     []club.Transaction
		players []club.Player
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		txs, err = s.api.Transactions(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.api.Players(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		backendError(c, err)
		return
	}

	total, invalid := dashboard.TotalRevenue(txs)
	if invalid > 0 {
		log := logger.FromContext(c.Request.Context())
		log.Warn().Int("invalid_amounts", invalid).Msg("transactions with unparseable amounts counted as zero")
	}
	c.JSON(http.StatusOK, financeResponse{
		Transactions: dashboard.RecentTransactions(txs, len(txs)),
		TotalRevenue: total,
		PlayerNames:  dashboard.PlayerNames(players),
	})
}

func (s *server) addTransaction(c *gin.Context) {
	var t club.Transaction
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := club.PrepareTransaction(t)
	if err != nil {
		backendError(c, err)
		return
	}
	created, err := s.api.RecordTransaction(c.Request.Context(), t)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) createTeam(c *gin.Context) {
	var t club.Team
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := club.PrepareTeam(t)
	if err != nil {
		backendError(c, err)
		return
	}
	created, err := s.api.CreateTeam(c.Request.Context(), t)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) updateTeam(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var t club.Team
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := club.PrepareTeam(t)
	if err != nil {
		backendError(c, err)
		return
	}
	updated, err := s.api.UpdateTeam(c.Request.Context(), id, t)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) createPlayer(c *gin.Context) {
	var p club.Player
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := club.PreparePlayer(p)
	if err != nil {
		backendError(c, err)
		return
	}
	created, err := s.api.CreatePlayer(c.Request.Context(), p)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) updatePlayer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p club.Player
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := club.PreparePlayer(p)
	if err != nil {
		backendError(c, err)
		return
	}
	updated, err := s.api.UpdatePlayer(c.Request.Context(), id, p)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *server) createInventoryItem(c *gin.Context) {
	var item club.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := club.PrepareInventoryItem(item)
	if err != nil {
		backendError(c, err)
		return
	}
	created, err := s.api.CreateInventoryItem(c.Request.Context(), item)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) updateInventoryItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var item club.InventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := club.PrepareInventoryItem(item)
	if err != nil {
		backendError(c, err)
		return
	}
	updated, err := s.api.UpdateInventoryItem(c.Request.Context(), id, item)
	if err != nil {
		backendError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// initiatePayment starts paying an unpaid transaction and hands the browser
// the gateway URL to navigate to.
func (s *server) initiatePayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sess, err := s.sessionFor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	started, err := s.payments.Initiate(c.Request.Context(), sess, id)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidTransaction):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, payment.ErrAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": "Transaction is already paid"})
		default:
			backendError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, initiateResponse{RedirectURL: started.RedirectURL})
}

// paymentStatus runs the verification for the caller's return from the
// gateway. The outcome is always a terminal display state.
func (s *server) paymentStatus(c *gin.Context) {
	sess, err := s.sessionFor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := s.payments.NewFlow(sess).Verify(c.Request.Context())
	c.JSON(http.StatusOK, out)
}

func (s *server) listAttempts(c *gin.Context) {
	if s.attempts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment audit trail is not configured"})
		return
	}

	var f audit.Filter
	if v := c.Query("transaction"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction"})
			return
		}
		f.TransactionID = id
	}
	f.CorrelationID = c.Query("correlation_id")
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		f.Limit = limit
	}

	attempts, err := s.attempts.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, attempts)
}
