// Package server exposes the quotevault REST API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/interfaces"
)

// Server is the HTTP API server
type Server struct {
	config  *common.Config
	logger  *common.Logger
	series  interfaces.SeriesService
	client  interfaces.MarketDataClient
	httpSrv *http.Server
}

// NewServer creates the API server
func NewServer(config *common.Config, logger *common.Logger, series interfaces.SeriesService, client interfaces.MarketDataClient) *Server {
	s := &Server{
		config: config,
		logger: logger,
		series: series,
		client: client,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := s.withRecovery(s.withCORS(s.withCorrelationID(mux)))

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	mux.HandleFunc("/api/series/{ticker}/bars", s.handleGetBars)
	mux.HandleFunc("/api/series/{ticker}/price", s.handleGetPrice)
	mux.HandleFunc("/api/series/{ticker}/merge", s.handleMerge)
	mux.HandleFunc("/api/series/{ticker}", s.handleDeleteSeries)

	mux.HandleFunc("/api/prices/batch", s.handleBatchPrices)
	mux.HandleFunc("/api/refresh", s.handleRefresh)

	mux.HandleFunc("/api/cache/stats", s.handleCacheStats)
	mux.HandleFunc("/api/cache", s.handleClearCache)

	mux.HandleFunc("/api/search", s.handleSearch)
}

// Start begins serving. It blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("API server listening")

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down API server")
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the configured handler chain, primarily for tests
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
