// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/seekr/internal/api"
	"github.com/starford/seekr/internal/engine"
	"github.com/starford/seekr/internal/index"
	"github.com/starford/seekr/internal/mcpserver"
	"github.com/starford/seekr/internal/sse"
)

// App owns the index store and the engine built on it. The store is opened
// once by Open and released by Close.
type App struct {
	Config *Config
	Engine *engine.Service
	Logger *slog.Logger

	db      *index.DB
	version string
}

// Open loads the store, builds the engine and registers the collections
// declared in configuration that are not yet known. A configured collection
// that cannot be registered is logged and skipped.
func Open(ctx context.Context, opts ...Option) (*App, error) {
	return open(ctx, nil, opts...)
}

func open(ctx context.Context, pub engine.Publisher, opts ...Option) (*App, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := index.Open(cfg.SQLite.Path, index.Options{
		BusyTimeout: cfg.SQLite.BusyTimeout,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	embedder := app.embedder
	if embedder == nil {
		embedder = cfg.Embedding.Client()
	}

	svc := engine.New(db, embedder, engine.Options{
		Model:        cfg.Embedding.Model,
		BatchSize:    cfg.Embedding.BatchSize,
		BatchDelay:   cfg.Embedding.BatchDelay,
		Weights:      cfg.Search.Weights(),
		DefaultLimit: cfg.Search.DefaultLimit,
		Chunker:      cfg.Chunking.Chunker(),
		Publisher:    pub,
		Logger:       logger,
	})

	for _, c := range cfg.Collections {
		if _, err := svc.EnsureCollection(ctx, c.Name, c.Path, c.Pattern); err != nil {
			logger.Warn("collection not registered",
				slog.String("collection", c.Name),
				slog.String("path", c.Path),
				slog.String("error", err.Error()))
		}
	}

	return &App{Config: cfg, Engine: svc, Logger: logger, db: db, version: app.version}, nil
}

// Close releases the index store.
func (a *App) Close() error {
	return a.db.Close()
}

// Run starts the HTTP sidecar with the given options and blocks until the
// context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("embedding_model", cfg.Embedding.Model),
		slog.Int("collections", len(cfg.Collections)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	a, err := open(ctx, broker, append(opts, WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer a.Close()

	// Initial pass so the index reflects the file system on startup.
	if _, err := a.Engine.Reindex(ctx, "", false); err != nil {
		logger.Warn("initial reindex failed", slog.String("error", err.Error()))
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	api.HealthRoutes(r, a.Engine)

	// Mount API routes under /api; the SSE stream shares their auth.
	r.Mount("/api", api.NewRouter(a.Engine, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr so they never
// interleave with protocol messages on stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	a, err := open(ctx, nil, append(opts, WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer a.Close()

	version := app.version
	if version == "" {
		version = "dev"
	}
	logger.Info("MCP server starting on stdio", slog.String("version", version))
	return mcpserver.New(a.Engine, version).ServeStdio()
}
