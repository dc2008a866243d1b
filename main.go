package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"club-dashboard-backend/internal/audit"
	"club-dashboard-backend/internal/clubapi"
	"club-dashboard-backend/internal/config"
	"club-dashboard-backend/internal/dashboard"
	"club-dashboard-backend/internal/logger"
	"club-dashboard-backend/internal/payment"
	"club-dashboard-backend/internal/session"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type loadFunc func() (*config.Config, zerolog.Logger, error)

func newRootCommand() *cobra.Command {
	var configPath, envFile string

	load := func() (*config.Config, zerolog.Logger, error) {
		cfg, err := config.Load(configPath, envFile)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
	}

	serve := newServeCommand(load)
	root := &cobra.Command{
		Use:          "club-dashboard",
		Short:        "Club management dashboard backend",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "club.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a .env file")
	root.AddCommand(serve, newMigrateCommand(load), newSnapshotCommand(load))
	return root
}

func newServeCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, log)
		},
	}
}

func newMigrateCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the payment audit tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			if err := setupDatabase(cmd.Context(), cfg.Database, log); err != nil {
				log.Error().Err(err).Msg("Migration failed")
				return err
			}
			log.Info().Msg("Migration completed successfully")
			return nil
		},
	}
}

func newSnapshotCommand(load loadFunc) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the dashboard snapshot as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := load()
			if err != nil {
				return err
			}
			api, err := newAPIClient(cfg.API)
			if err != nil {
				return err
			}
			ctx := clubapi.WithToken(cmd.Context(), token)
			snap, err := dashboard.NewLoader(api).Load(ctx)
			if err != nil {
				return fmt.Errorf("loading dashboard: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
	cmd.Flags().StringVar(&token, "token", os.Getenv("CLUB_API_TOKEN"), "auth token for the club backend")
	return cmd
}

func newAPIClient(cfg config.APIConfig) (*clubapi.Client, error) {
	return clubapi.New(cfg.URL, clubapi.WithTimeout(cfg.Timeout))
}

// runServer wires the backing services and serves until ctx is cancelled.
func runServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	api, err := newAPIClient(cfg.API)
	if err != nil {
		return err
	}

	srv := &server{
		api:      api,
		loader:   dashboard.NewLoader(api),
		sessions: session.NewMemoryStore(cfg.Session.TTL),
		log:      log,
		now:      time.Now,
	}
	opts := []payment.Option{
		payment.WithLogger(log.With().Str("component", "payment").Logger()),
		payment.WithVerifyTimeout(cfg.Payments.VerifyTimeout),
	}

	// Initialize database
	if cfg.Database.URL != "" {
		db, err := openDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		if err := ensureSchema(ctx, db); err != nil {
			return err
		}
		srv.db = db
		srv.attempts = audit.NewStore(db)
		opts = append(opts, payment.WithRecorder(srv.attempts))
	} else {
		log.Warn().Msg("DATABASE_URL not set, payment audit trail disabled")
	}

	// Initialize Redis
	if cfg.Redis.URL != "" {
		client, err := initRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize Redis, continuing with in-memory sessions")
		} else {
			defer client.Close()
			srv.redis = client
			srv.sessions = session.NewRedisStore(client, cfg.Session.TTL)
		}
	}

	srv.payments = payment.NewService(api, opts...)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newRouter(srv, cfg),
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server starting")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newRouter(s *server, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	// CORS middleware
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.healthCheck)

	api := r.Group("/api", authToken(), sessionCookie(cfg.Session))
	api.POST("/login", s.login)
	api.GET("/dashboard", s.getDashboard)
	api.GET("/matches", s.getMatches)
	api.POST("/matches", s.createMatch)
	api.PUT("/matches/:id", s.updateMatch)
	api.DELETE("/matches/:id", deleteHandler("Match", s.api.DeleteMatch))
	api.GET("/transactions", s.getTransactions)
	api.POST("/transactions", s.addTransaction)
	api.GET("/teams", listHandler(s.api.Teams))
	api.POST("/teams", s.createTeam)
	api.PUT("/teams/:id", s.updateTeam)
	api.DELETE("/teams/:id", deleteHandler("Team", s.api.DeleteTeam))
	api.GET("/players", listHandler(s.api.Players))
	api.POST("/players", s.createPlayer)
	api.PUT("/players/:id", s.updatePlayer)
	api.DELETE("/players/:id", deleteHandler("Player", s.api.DeletePlayer))
	api.GET("/grounds", listHandler(s.api.Grounds))
	api.GET("/inventory", listHandler(s.api.Inventory))
	api.GET("/inventory/categories", listHandler(s.api.InventoryCategories))
	api.POST("/inventory", s.createInventoryItem)
	api.PUT("/inventory/:id", s.updateInventoryItem)
	api.DELETE("/inventory/:id", deleteHandler("Inventory item", s.api.DeleteInventoryItem))
	api.POST("/payments/:id/initiate", s.initiatePayment)
	api.GET("/payments/status", s.paymentStatus)
	api.GET("/payments/attempts", s.listAttempts)
	return r
}
