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

	"github.com/nyayassist/nyayassist/internal/api"
	"github.com/nyayassist/nyayassist/internal/chat"
	"github.com/nyayassist/nyayassist/internal/db"
	"github.com/nyayassist/nyayassist/internal/ingest"
	"github.com/nyayassist/nyayassist/internal/kanoon"
	"github.com/nyayassist/nyayassist/internal/law"
	"github.com/nyayassist/nyayassist/internal/sse"
	"github.com/nyayassist/nyayassist/internal/storage"
	"github.com/nyayassist/nyayassist/internal/userservice"
)

// Run starts the application with the given options.
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
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("uploads_path", cfg.Uploads.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("law_data_path", cfg.LawData.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure uploads directory exists.
	if err := os.MkdirAll(cfg.Uploads.Path, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	// Initialize storage for original PDF files.
	store, err := storage.NewFS(cfg.Uploads.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite database.
	database, err := db.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer database.Close()

	// Load the statute mapping dataset. A missing or malformed file
	// degrades to an empty store so the server still comes up.
	engine := law.NewEngine(law.LoadStore(cfg.LawData.Path, logger))

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Domain services.
	ingestSvc := ingest.NewService(store, database, logger, broker.PublishUploadEvent)

	// Remove stored files left behind by a crash mid-ingestion.
	if removed, err := ingestSvc.SweepOrphans(); err != nil {
		logger.Warn("Orphan sweep failed", slog.String("error", err.Error()))
	} else if removed > 0 {
		logger.Info("Removed orphaned upload files", slog.Int("count", removed))
	}

	llm := chat.NewOpenAIClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	chatSvc := chat.NewService(database, llm, engine, logger, broker.PublishChatAnswered)
	userSvc := userservice.NewService(database)

	var kanoonClient *kanoon.Client
	if cfg.Kanoon.Token != "" {
		kanoonClient = kanoon.NewClient(cfg.Kanoon.BaseURL, cfg.Kanoon.Token)
	} else {
		logger.Warn("kanoon token not configured, case law search disabled")
	}

	// Build API handler and router.
	h := api.NewHandler(engine, ingestSvc, chatSvc, kanoonClient, userSvc, database)
	apiRouter := api.NewRouter(h, database, logger, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the dataset file and hot-reload the mapping store.
	g.Go(func() error {
		if err := engine.Watch(gCtx, cfg.LawData.Path, logger); err != nil {
			logger.Warn("law data watcher stopped", slog.String("error", err.Error()))
		}
		return nil
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
