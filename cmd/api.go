package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskchat/taskchat/internal/api"
	"github.com/taskchat/taskchat/internal/auth"
	"github.com/taskchat/taskchat/internal/database"
	"github.com/taskchat/taskchat/internal/instrumentation"
	"github.com/taskchat/taskchat/internal/server"
)

func newAPICmd() *cobra.Command {
	var (
		debugMode      bool
		addr           string
		databaseURL    string
		jwtSecret      string
		skipMigrations bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Endpoints:
  POST /auth/register, /auth/login, /auth/refresh
  GET/POST /api/{user_id}/tasks and task subroutes (JWT protected)
  POST /api/{user_id}/chat and conversation routes (JWT protected)
  GET /healthz, /readyz

Configuration:
  DATABASE_URL    PostgreSQL connection URL (or --database-url)
  JWT_SECRET_KEY  HMAC secret for signing tokens (required)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveDatabaseURL(databaseURL)
			if err != nil {
				return err
			}

			jwtConfig := auth.DefaultJWTConfig()
			if jwtSecret != "" {
				jwtConfig.SecretKey = jwtSecret
			}
			if jwtConfig.SecretKey == "" {
				return fmt.Errorf("JWT secret not configured: use --jwt-secret or the JWT_SECRET_KEY env var")
			}

			if !cmd.Flags().Changed("metrics-addr") {
				if envAddr := os.Getenv("METRICS_ADDR"); envAddr != "" {
					metricsAddr = envAddr
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "false" {
				metricsEnabled = false
			}

			return runAPI(apiOptions{
				addr:           addr,
				databaseURL:    url,
				jwt:            jwtConfig,
				skipMigrations: skipMigrations,
				debugMode:      debugMode,
				metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&addr, "addr", ":8081", "HTTP API server address")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL. Can also use DATABASE_URL env var.")
	cmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "HMAC secret for signing JWTs. Can also use JWT_SECRET_KEY env var.")
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply database migrations on startup")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

type apiOptions struct {
	addr           string
	databaseURL    string
	jwt            auth.JWTConfig
	skipMigrations bool
	debugMode      bool
	metrics        MetricsConfig
}

func runAPI(opts apiOptions) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(opts.debugMode)

	if !opts.skipMigrations {
		if err := database.Migrate(opts.databaseURL); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during instrumentation shutdown", "error", err)
		}
	}()

	serverContext, err := server.NewServerContext(shutdownCtx, server.Config{
		DatabaseURL: opts.databaseURL,
		Logger:      logger,
		Metrics:     provider.Metrics(),
		Audit:       instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging),
		JWT:         opts.jwt,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", "error", err)
		}
	}()

	metricsServer, err := startMetricsServer(provider, opts.metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("error during metrics server shutdown", "error", err)
			}
		}
	}()

	apiServer := api.NewServer(serverContext)

	mux := http.NewServeMux()
	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)
	mux.Handle("/", apiServer.Handler())
	healthChecker.SetReady(true)

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting HTTP API server", "addr", opts.addr)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received, stopping HTTP API server")
		healthChecker.SetReady(false)
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := httpServer.Shutdown(stopCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP API server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP API server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP API server gracefully stopped")
	return nil
}
