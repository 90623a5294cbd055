package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"techie-backend/internal/clock"
	"techie-backend/internal/config"
	"techie-backend/internal/database"
	"techie-backend/internal/handlers"
	"techie-backend/internal/metrics"
	"techie-backend/internal/middleware"
	"techie-backend/internal/qrcode"
	"techie-backend/internal/repository"
	"techie-backend/internal/router"
	"techie-backend/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API and the Prometheus metrics endpoint. Pending migrations are applied first.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("env", cfg.Env).
		Msg("Starting Techie")

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.NewRealClock(loc)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("PostgreSQL connected")

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info().Msg("Redis connected")

	if err := database.RunMigrations(ctx, pool, migrationsDir, logger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	billingRepo := repository.NewBillingRepo(pool)

	// Services
	usage := services.NewUsageAggregator(sessionRepo, clk)
	ledger := services.NewLedger(sessionRepo, clk, logger)
	quota := services.NewQuotaService(userRepo, billingRepo, usage, clk, logger)
	reports := services.NewReportService(sessionRepo, billingRepo, usage, clk)
	users := services.NewUserService(userRepo, quota, logger)
	qr := services.NewQRService(redisClient, qrcode.NewPNGEncoder(), ledger, clk, cfg.QRValidityMonths, logger)

	admin, err := users.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail)
	if err != nil {
		return fmt.Errorf("failed to provision super admin: %w", err)
	}
	logger.Info().Str("user_id", admin.ID.String()).Msg("Super admin ready")

	// HTTP
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	scanLimiter := middleware.NewRateLimiter(cfg.ScanRateLimit, time.Minute, clk)
	defer scanLimiter.Stop()

	r := router.New(
		logger,
		jwtAuth,
		scanLimiter,
		handlers.NewCheckInHandler(ledger, qr),
		handlers.NewUsageHandler(quota, reports),
		handlers.NewReportHandler(reports, clk),
		handlers.NewUserHandler(users),
		handlers.NewQRHandler(qr),
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	metricsServer := metrics.NewServer(cfg.MetricsAddr, logger)
	metricsServer.Start()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("API server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info().Msg("Shutdown signal received, gracefully stopping...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error stopping API server")
	}

	if err := metricsServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping metrics server")
	}

	logger.Info().Msg("Techie stopped")
	return nil
}
