package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChaseRain/lessonslides/internal/api"
	"github.com/ChaseRain/lessonslides/internal/app"
)

func main() {
	// Load config and logger
	cfg, zapLogger, err := app.Load()
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer zapLogger.Sync()

	// Background generation runs stop when the server does.
	baseCtx, cancelRuns := context.WithCancel(context.Background())
	defer cancelRuns()

	// Init services
	services, err := app.Build(baseCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Error("failed to init services", "error", err)
		os.Exit(1)
	}
	defer services.Close()

	// Init router
	router := api.NewRouter(api.Deps{
		Orchestrator: services.Orchestrator,
		Decks:        services.Decks,
		Renderer:     services.Renderer,
		Exporter:     services.Exporter,
		Snapshots:    services.Storage,
		Logger:       zapLogger,
		BaseContext:  baseCtx,
	}, api.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		FilesDir:     cfg.Storage.BasePath,
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Start server
	go func() {
		zapLogger.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")
	cancelRuns()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", "error", err)
	}
	zapLogger.Info("server stopped")
}
