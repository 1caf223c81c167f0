package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mediguard/mediguard/internal/config"
	"github.com/mediguard/mediguard/internal/domain/claims"
	"github.com/mediguard/mediguard/internal/domain/identity"
	"github.com/mediguard/mediguard/internal/domain/insights"
	"github.com/mediguard/mediguard/internal/domain/ledger"
	"github.com/mediguard/mediguard/internal/domain/prescription"
	"github.com/mediguard/mediguard/internal/domain/records"
	"github.com/mediguard/mediguard/internal/platform/auth"
	"github.com/mediguard/mediguard/internal/platform/db"
	"github.com/mediguard/mediguard/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mediguard-server",
		Short: "MediGuard health records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(verifyChainCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default from MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default from MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

// verifyChainCmd walks the full transaction ledger and checks that every
// entry's previous-hash pointer matches its predecessor. Exits non-zero when
// the chain is broken so it can back a cron or CI check.
func verifyChainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-chain",
		Short: "Verify the integrity of the transaction ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			ledgerSvc := ledger.NewService(ledger.NewLedgerRepoPG(pool))
			valid, err := ledgerSvc.VerifyIntegrity(ctx)
			if err != nil {
				return fmt.Errorf("verify chain: %w", err)
			}
			if !valid {
				return fmt.Errorf("ledger chain is broken")
			}
			fmt.Println("Ledger chain verified.")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	txRunner := db.NewTxRunner(pool)

	jwtCfg := auth.JWTConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware; register/login and health checks stay public.
	e.Use(auth.JWTMiddleware(jwtCfg, auth.Skipper))

	// API groups
	authGroup := e.Group("/api/auth")
	apiV1 := e.Group("/api/v1")

	// Rate limiting middleware
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	authGroup.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// -- Register Domain Handlers --

	// Ledger domain. Created first: every other domain appends to it.
	ledgerRepo := ledger.NewLedgerRepoPG(pool)
	ledgerSvc := ledger.NewService(ledgerRepo)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	ledgerHandler.RegisterRoutes(apiV1)

	// Identity domain
	userRepo := identity.NewUserRepoPG(pool)
	identitySvc := identity.NewService(userRepo)
	identityHandler := identity.NewHandler(identitySvc, jwtCfg)
	identityHandler.RegisterRoutes(authGroup, apiV1)

	// Records domain
	recordRepo := records.NewRecordRepoPG(pool)
	permRepo := records.NewPermissionRepoPG(pool)
	recordsSvc := records.NewService(recordRepo, permRepo, ledgerSvc, txRunner)
	recordsHandler := records.NewHandler(recordsSvc, cfg.UploadMaxBytes)
	recordsHandler.RegisterRoutes(apiV1)

	// Insights domain; feeds record uploads back into the records service.
	insightRepo := insights.NewInsightRepoPG(pool)
	insightsSvc := insights.NewService(insightRepo)
	insightsHandler := insights.NewHandler(insightsSvc)
	insightsHandler.RegisterRoutes(apiV1)
	recordsSvc.SetAnalyzer(insightsSvc)
	recordsSvc.SetInsightCounter(insightsSvc)

	// Prescription domain
	rxRepo := prescription.NewPrescriptionRepoPG(pool)
	rxSvc := prescription.NewService(rxRepo, ledgerSvc, txRunner)
	rxHandler := prescription.NewHandler(rxSvc)
	rxHandler.RegisterRoutes(apiV1)

	// Claims domain
	claimRepo := claims.NewClaimRepoPG(pool)
	claimsSvc := claims.NewService(claimRepo, ledgerSvc, txRunner)
	claimsHandler := claims.NewHandler(claimsSvc)
	claimsHandler.RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
