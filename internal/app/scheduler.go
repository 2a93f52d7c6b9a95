package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/interfaces"
	"github.com/bobmcallan/quotevault/internal/models"
)

// refreshRunTimeout bounds a single scheduled refresh run
const refreshRunTimeout = 30 * time.Minute

// Scheduler drives periodic cache refreshes over all tracked products.
// An empty schedule disables it.
type Scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
	series interfaces.SeriesService

	schedule string
}

// NewScheduler creates the refresh scheduler from configuration
func NewScheduler(config *common.Config, logger *common.Logger, series interfaces.SeriesService) (*Scheduler, error) {
	s := &Scheduler{
		logger:   logger,
		series:   series,
		schedule: config.Refresh.Schedule,
	}

	if s.schedule == "" {
		logger.Info().Msg("Refresh scheduler disabled")
		return s, nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.runRefresh); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins the cron loop. A nil cron (disabled scheduler) is a no-op.
func (s *Scheduler) Start() {
	if s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("Refresh scheduler started")
}

// Stop halts the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Refresh scheduler stopped")
}

// runRefresh executes one auto-discovery refresh over all tracked products
func (s *Scheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshRunTimeout)
	defer cancel()

	result, err := s.series.RefreshCache(ctx, models.RefreshSelectors{})
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled refresh failed")
		return
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("tickers", len(result.Tickers)).
		Int("cached", result.Summary.Cached).
		Int("errors", result.Summary.Errors).
		Msg("Scheduled refresh completed")
}
