// Package app wires the service stack shared by the HTTP server and the
// command-line front end.
package app

import (
	"context"
	"time"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/infra/config"
	"github.com/ChaseRain/lessonslides/internal/infra/httpclient"
	"github.com/ChaseRain/lessonslides/internal/infra/limiter"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/internal/service/export"
	"github.com/ChaseRain/lessonslides/internal/service/generator"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/internal/service/storage"
)

type App struct {
	Config       *config.Config
	Logger       *logger.Logger
	Generator    *generator.Service
	Storage      *storage.Service
	Renderer     *render.ImageRenderer
	Exporter     *export.Service
	Orchestrator *orchestrator.Orchestrator
	Decks        *deck.Store
}

// Build constructs every service from cfg. The caller owns the returned App
// and must Close it.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	// Init HTTP client
	httpClient := httpclient.New(httpclient.Options{
		Timeout:    time.Duration(cfg.HTTPClient.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.HTTPClient.MaxRetries,
	})

	// Init limiter
	lim := limiter.New(cfg.Limiter.MaxConcurrent, cfg.Limiter.RatePerSecond)

	// Init services
	gen := generator.New(generator.Options{
		BaseURL:        cfg.API.BaseURL,
		StreamingURL:   cfg.API.StreamingURL,
		QuestionPrefix: cfg.API.QuestionPrefix,
	}, httpClient, log)

	store, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	renderer, err := render.NewImageRenderer(cfg.Render.FontPath, cfg.Render.FontSize)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       log,
		Generator:    gen,
		Storage:      store,
		Renderer:     renderer,
		Exporter:     export.New(renderer, store, log),
		Orchestrator: orchestrator.New(gen, store, lim, log),
		Decks:        deck.NewStore(log),
	}, nil
}

func (a *App) Close() error {
	return a.Storage.Close()
}

// Load reads configuration and builds the logger the way every entry point
// does.
func Load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
