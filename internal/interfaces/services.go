// Package interfaces defines service contracts for quotevault
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/quotevault/internal/models"
)

// SeriesService is the time-series cache surface exposed to callers
type SeriesService interface {
	// GetCachedBars returns bars for a ticker, optionally bounded by
	// [from, to] inclusive. Zero times mean unbounded.
	GetCachedBars(ctx context.Context, fullTicker string, from, to time.Time) ([]models.Bar, error)

	// GetCurrentPrice resolves the current price: fresh cache, then live
	// fetch, then stale fallback, then NotFoundError.
	GetCurrentPrice(ctx context.Context, fullTicker string) (*models.PriceResult, error)

	// GetBatchPrices resolves prices for many tickers with per-ticker
	// error isolation.
	GetBatchPrices(ctx context.Context, fullTickers []string) (map[string]models.BatchPriceResult, error)

	// MergeHistoricalRange fetches [from, to] from the provider and merges
	// it into the cached history. Zero to means now.
	MergeHistoricalRange(ctx context.Context, fullTicker string, from, to time.Time) (*models.MergeSummary, error)

	// RefreshCache merges history for the selected tickers, or for every
	// security discovered across tracked products when none are given.
	RefreshCache(ctx context.Context, selectors models.RefreshSelectors) (*models.RefreshResult, error)

	// GetCacheStats summarizes the cache contents
	GetCacheStats(ctx context.Context) (*models.CacheStats, error)

	// ClearCache removes one record, or all records when fullTicker is empty
	ClearCache(ctx context.Context, fullTicker string) (int, error)
}
