package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/taskchat/taskchat/internal/database"
	"github.com/taskchat/taskchat/internal/instrumentation"
	"github.com/taskchat/taskchat/internal/server"
	"github.com/taskchat/taskchat/internal/tools/tasks_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// serveOptions carries the resolved serve command configuration.
type serveOptions struct {
	transport        string
	httpAddr         string
	databaseURL      string
	readOnly         bool
	skipMigrations   bool
	disableStreaming bool
	debugMode        bool
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		transport        string
		httpAddr         string
		databaseURL      string
		readOnly         bool
		skipMigrations   bool
		disableStreaming bool
		metricsEnabled   bool
		metricsAddr      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide task management
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Tools:
  add_task, list_tasks, complete_task, delete_task and update_task.
  With --read-only only list_tasks is registered.

Database:
  The PostgreSQL connection URL is read from --database-url or the
  DATABASE_URL env var. Pending migrations are applied on startup
  unless --skip-migrations is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveDatabaseURL(databaseURL)
			if err != nil {
				return err
			}

			// Load metrics config from environment if not set via flags
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}
			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "false" {
				metricsEnabled = false
			}

			return runServe(serveOptions{
				transport:        transport,
				httpAddr:         httpAddr,
				databaseURL:      url,
				readOnly:         readOnly,
				skipMigrations:   skipMigrations,
				disableStreaming: disableStreaming,
				debugMode:        debugMode,
				metrics: MetricsConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL. Can also use DATABASE_URL env var.")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Register only the list_tasks tool; disable all write operations")
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply database migrations on startup")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(opts.debugMode)

	if !opts.skipMigrations {
		if err := database.Migrate(opts.databaseURL); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	// Initialize instrumentation provider
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
		ReadOnly:    opts.readOnly,
		Logger:      logger,
		Metrics:     provider.Metrics(),
		Audit:       instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging),
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", "error", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("taskchat", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	if opts.readOnly {
		logger.Info("starting server in read-only mode (only list_tasks is available)")
	}

	if err := tasks_tools.RegisterTaskTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}

	switch opts.transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, provider, opts, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, serverContext *server.ServerContext, provider *instrumentation.Provider, opts serveOptions, logger *slog.Logger) error {
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

	var streamableServer http.Handler
	if opts.disableStreaming {
		streamableServer = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithDisableStreaming(true),
		)
	} else {
		streamableServer = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath("/mcp"),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamableServer)

	healthChecker := server.NewHealthChecker(serverContext)
	healthChecker.RegisterHealthEndpoints(mux)
	healthChecker.SetReady(true)

	httpServer := &http.Server{
		Addr:              opts.httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting MCP server",
		"transport", opts.transport,
		"addr", opts.httpAddr,
		"endpoint", "/mcp")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

// startMetricsServer starts the Prometheus metrics server when metrics
// are enabled. Returns nil without error when they are not.
func startMetricsServer(provider *instrumentation.Provider, config MetricsConfig, logger *slog.Logger) (*server.MetricsServer, error) {
	if !config.Enabled || !provider.Enabled() {
		return nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	logger.Info("metrics server started", "addr", metricsServer.Addr())
	return metricsServer, nil
}
