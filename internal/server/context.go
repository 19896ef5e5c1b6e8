package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskchat/taskchat/internal/agent"
	"github.com/taskchat/taskchat/internal/auth"
	"github.com/taskchat/taskchat/internal/chat"
	"github.com/taskchat/taskchat/internal/database"
	"github.com/taskchat/taskchat/internal/instrumentation"
	"github.com/taskchat/taskchat/internal/tasks"
)

// Config holds the dependencies and settings for a ServerContext.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string

	// ReadOnly disables the mutating MCP tools (add, complete, delete,
	// update). Only list_tasks is registered when set.
	ReadOnly bool

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger

	// JWT configures token issuing for the HTTP API. Zero value means
	// auth.DefaultJWTConfig().
	JWT auth.JWTConfig
}

// ServerContext wires the database pool, stores and services together
// and owns their lifecycle. Both the MCP server and the HTTP API are
// built on top of one ServerContext.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	pool *pgxpool.Pool

	taskService *tasks.Service
	authService *auth.Service
	chatStore   chat.Store
	assistant   *agent.Agent

	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	readOnly bool

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext connects to the database and builds the service
// graph. The caller owns the returned context and must call Shutdown.
func NewServerContext(ctx context.Context, cfg Config) (*ServerContext, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &instrumentation.Metrics{}
	}
	if cfg.Audit == nil {
		cfg.Audit = instrumentation.NewAuditLogger(nil)
	}
	if cfg.JWT.SecretKey == "" {
		cfg.JWT = auth.DefaultJWTConfig()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	pool, err := database.Connect(shutdownCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	taskStore := tasks.NewPGStore(pool, cfg.Logger, cfg.Metrics)
	taskService := tasks.NewService(taskStore, cfg.Logger)

	userStore := auth.NewPGUserStore(pool)
	authService := auth.NewService(userStore, auth.NewJWTManager(cfg.JWT), cfg.Logger, cfg.Metrics)

	chatStore := chat.NewPGStore(pool, cfg.Metrics)
	assistant := agent.New(taskService, cfg.Logger, cfg.Metrics)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		pool:        pool,
		taskService: taskService,
		authService: authService,
		chatStore:   chatStore,
		assistant:   assistant,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		audit:       cfg.Audit,
		readOnly:    cfg.ReadOnly,
	}, nil
}

// Context returns the server's lifecycle context. It is cancelled on
// Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Pool returns the database pool.
func (sc *ServerContext) Pool() *pgxpool.Pool {
	return sc.pool
}

// Tasks returns the task service.
func (sc *ServerContext) Tasks() *tasks.Service {
	return sc.taskService
}

// Auth returns the authentication service.
func (sc *ServerContext) Auth() *auth.Service {
	return sc.authService
}

// Chat returns the conversation store.
func (sc *ServerContext) Chat() chat.Store {
	return sc.chatStore
}

// Agent returns the chat agent.
func (sc *ServerContext) Agent() *agent.Agent {
	return sc.assistant
}

// Logger returns the server's logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Metrics returns the metrics recorder.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Audit returns the audit logger.
func (sc *ServerContext) Audit() *instrumentation.AuditLogger {
	return sc.audit
}

// ReadOnly reports whether mutating tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Ping verifies database connectivity. Used by readiness probes.
func (sc *ServerContext) Ping(ctx context.Context) error {
	if sc.pool == nil {
		return fmt.Errorf("no database pool")
	}
	return sc.pool.Ping(ctx)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the lifecycle context and closes the database pool.
// Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	if sc.pool != nil {
		sc.pool.Close()
	}
	return nil
}
