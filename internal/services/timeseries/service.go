// Package timeseries implements the market-data cache service: historical
// merge, derived analytics, current-price resolution and batch refresh.
package timeseries

import (
	"context"
	"sync"
	"time"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/interfaces"
	"github.com/bobmcallan/quotevault/internal/models"
)

const (
	// defaultLookbackYears is the history depth fetched when no explicit
	// from date is supplied.
	defaultLookbackYears = 1

	// defaultLookbackBufferDays pads lookback windows so analytics have
	// enough leading bars on the first day of the window.
	defaultLookbackBufferDays = 30
)

// Service implements interfaces.SeriesService on a SeriesStore and a
// market-data provider client.
type Service struct {
	storage interfaces.StorageManager
	client  interfaces.MarketDataClient
	logger  *common.Logger

	lookbackBufferDays int

	// now is injectable for tests
	now func() time.Time

	// locks serializes merges per full ticker so concurrent merges for the
	// same security cannot overwrite each other's read-modify-write.
	locks sync.Map // fullTicker -> *sync.Mutex
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithLookbackBuffer overrides the lookback padding in days
func WithLookbackBuffer(days int) ServiceOption {
	return func(s *Service) {
		if days > 0 {
			s.lookbackBufferDays = days
		}
	}
}

// WithClock overrides the service clock
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the time-series cache service
func NewService(storage interfaces.StorageManager, client interfaces.MarketDataClient, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		storage:            storage,
		client:             client,
		logger:             logger,
		lookbackBufferDays: defaultLookbackBufferDays,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// lockTicker acquires the per-ticker merge lock and returns its release func.
func (s *Service) lockTicker(fullTicker string) func() {
	v, _ := s.locks.LoadOrStore(fullTicker, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// defaultLookbackStart is the from date used when the caller supplies none:
// one year back plus the analytics buffer.
func (s *Service) defaultLookbackStart() time.Time {
	return s.now().AddDate(-defaultLookbackYears, 0, -s.lookbackBufferDays)
}

// GetCachedBars returns cached bars for a ticker, optionally bounded by
// [from, to] inclusive on calendar date. Zero bounds are open.
func (s *Service) GetCachedBars(ctx context.Context, fullTicker string, from, to time.Time) ([]models.Bar, error) {
	if fullTicker == "" {
		return nil, &models.ValidationError{Field: "full_ticker", Message: "ticker is required"}
	}

	record, err := s.storage.SeriesStore().Get(ctx, fullTicker)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, &models.NotFoundError{Ticker: fullTicker}
	}

	if from.IsZero() && to.IsZero() {
		return append([]models.Bar(nil), record.History...), nil
	}

	var bars []models.Bar
	for _, bar := range record.History {
		if !from.IsZero() && bar.Date.Before(from) {
			continue
		}
		if !to.IsZero() && bar.Date.After(to) {
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// GetCacheStats summarizes the cache contents
func (s *Service) GetCacheStats(ctx context.Context) (*models.CacheStats, error) {
	records, err := s.storage.SeriesStore().List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.CacheStats{
		TotalStocks: len(records),
	}

	for _, record := range records {
		stats.TotalDataPoints += record.DataPoints

		if !record.FirstDate.IsZero() {
			if stats.OldestDate == nil || record.FirstDate.Before(*stats.OldestDate) {
				d := record.FirstDate
				stats.OldestDate = &d
			}
		}
		if !record.LastDate.IsZero() {
			if stats.NewestDate == nil || record.LastDate.After(*stats.NewestDate) {
				d := record.LastDate
				stats.NewestDate = &d
			}
		}
	}

	return stats, nil
}

// ClearCache removes one record, or every record when fullTicker is empty.
// It returns the number of records removed.
func (s *Service) ClearCache(ctx context.Context, fullTicker string) (int, error) {
	store := s.storage.SeriesStore()

	if fullTicker == "" {
		count, err := store.RemoveAll(ctx)
		if err != nil {
			return 0, err
		}
		s.logger.Info().Int("removed", count).Msg("Cleared price series cache")
		return count, nil
	}

	record, err := store.Get(ctx, fullTicker)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, &models.NotFoundError{Ticker: fullTicker}
	}

	if err := store.Remove(ctx, fullTicker); err != nil {
		return 0, err
	}
	s.logger.Info().Str("ticker", fullTicker).Msg("Removed cached price series")
	return 1, nil
}

// Ensure Service implements SeriesService
var _ interfaces.SeriesService = (*Service)(nil)
