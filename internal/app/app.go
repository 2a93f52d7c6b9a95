// Package app wires configuration, storage, clients, services and the API
// server into a runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/bobmcallan/quotevault/internal/clients/eodhd"
	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/interfaces"
	"github.com/bobmcallan/quotevault/internal/server"
	"github.com/bobmcallan/quotevault/internal/services/timeseries"
	"github.com/bobmcallan/quotevault/internal/storage/surrealdb"
)

// App holds the composed application
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager
	Client  interfaces.MarketDataClient
	Series  interfaces.SeriesService

	server    *server.Server
	scheduler *Scheduler
}

// New builds the application from configuration
func New(config *common.Config) (*App, error) {
	logger := common.NewLoggerFromConfig(config.Logging)

	if config.Clients.EODHD.APIKey == "" {
		return nil, fmt.Errorf("EODHD API key is not configured")
	}

	storage, err := surrealdb.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	client := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	)

	series := timeseries.NewService(storage, client, logger,
		timeseries.WithLookbackBuffer(config.Refresh.GetLookbackBuffer()),
	)

	a := &App{
		Config:  config,
		Logger:  logger,
		Storage: storage,
		Client:  client,
		Series:  series,
	}

	a.server = server.NewServer(config, logger, series, client)

	scheduler, err := NewScheduler(config, logger, series)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	a.scheduler = scheduler

	return a, nil
}

// Run starts the scheduler and serves the API. It blocks until the server
// stops.
func (a *App) Run() error {
	a.scheduler.Start()
	return a.server.Start()
}

// Shutdown stops the scheduler, drains the API server and closes storage
func (a *App) Shutdown(ctx context.Context) error {
	a.scheduler.Stop()

	if err := a.server.Shutdown(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Server shutdown error")
	}

	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Storage close error")
	}

	a.Logger.Info().Msg("Application stopped")
	return nil
}
