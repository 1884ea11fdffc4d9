// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/jira"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/syncer"
)

func newApplication(opts []Option) *application {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// newLogger builds the structured JSON logger and installs it as default.
// MCP mode logs to stderr because stdout carries the protocol.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// buildSyncer assembles storage, index, tracker client, and syncer from
// configuration. The caller owns closing the returned DB.
func buildSyncer(cfg *Config, logger *slog.Logger, events syncer.EventFunc) (storage.Provider, *index.DB, *syncer.Syncer, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Vault.Path, cfg.Vault.IssuesDir), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create vault dirs: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	tracker := jira.New(cfg.Jira.BaseURL(), cfg.Jira.User, cfg.Jira.Token, cfg.Jira.JQL)
	s := syncer.New(tracker, store, db, cfg.Vault.IssuesDir, cfg.Vault.BoardFile, logger, events)
	return store, db, s, nil
}

// RunSync performs a single sync run and exits.
func RunSync(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	_, db, s, err := buildSyncer(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("sync finished with %d failed issues", res.Failed)
	}
	return nil
}

// RunMCP serves the MCP tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	store, db, s, err := buildSyncer(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := mcpserver.New(store, db, cfg.Vault.BoardFile, func(ctx context.Context) (*syncer.Result, error) {
		return s.Run(ctx)
	})
	return srv.ServeStdio()
}

// Run starts the sync daemon: an initial sync, a periodic sync loop, the
// status HTTP API with SSE events, and the vault watcher.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("jira_host", cfg.Jira.Host),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("sync_interval", cfg.App.SyncInterval.String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	store, db, s, err := buildSyncer(cfg, logger, broker.PublishSyncEvent)
	if err != nil {
		return err
	}
	defer db.Close()

	// Serialise sync runs: the ticker, the API trigger, and the initial
	// sync must never write the same note files concurrently.
	var syncMu sync.Mutex
	syncFn := func(ctx context.Context) (*syncer.Result, error) {
		syncMu.Lock()
		defer syncMu.Unlock()
		return s.Run(ctx)
	}

	// Initial sync. The daemon stays up even when the tracker is down.
	if _, err := syncFn(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// Build API service and router.
	svc := api.NewService(store, db, cfg.Vault.BoardFile, syncFn)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the vault for operator edits.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, cfg.Vault.Path, cfg.Vault.IssuesDir, logger, func(kind, path string) {
			broker.PublishSyncEvent("note."+kind, path)
		}); err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Periodic sync loop.
	g.Go(func() error {
		if cfg.App.SyncInterval.Std() <= 0 {
			logger.Info("periodic sync disabled")
			return nil
		}
		ticker := time.NewTicker(cfg.App.SyncInterval.Std())
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				if _, err := syncFn(gCtx); err != nil {
					logger.Warn("periodic sync failed", slog.String("error", err.Error()))
				}
			}
		}
	})

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
