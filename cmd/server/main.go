package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/spendboard/internal/api"
	"github.com/mcoot/spendboard/internal/config"
	"github.com/mcoot/spendboard/internal/factory"
)

func main() {
	// Load configuration (.env, then environment)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.FromEnv(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to release resources", slog.String("error", err.Error()))
		}
	}()

	if app.Degraded {
		logger.Warn("running on volatile storage, data will not survive a restart")
	}
	if !app.SteamClient.Configured() {
		logger.Warn("STEAM_API_KEY not set, library sync is disabled")
	}

	// Seed participants into an empty store
	if _, err := app.SeedService.LoadFromFile(context.Background(), cfg.SeedPath); err != nil {
		logger.Warn("could not seed participants", slog.String("error", err.Error()))
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		Storage:          app.Storage,
		StorageKind:      app.StorageKind,
		Degraded:         app.Degraded,
		AllowedOrigins:   cfg.AllowedOrigins,
		AuthService:      app.AuthService,
		RankingService:   app.RankingService,
		PurchaseService:  app.PurchaseService,
		CatalogService:   app.CatalogService,
		ReconcileService: app.ReconcileService,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)

	if app.Scheduler != nil {
		app.Scheduler.Start()
		logger.Info("scheduler started", slog.Any("jobs", app.Scheduler.JobNames()))
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", app.StorageKind),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
