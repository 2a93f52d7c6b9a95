package timeseries

import (
	"context"
	"time"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/identity"
	"github.com/bobmcallan/quotevault/internal/models"
)

// GetCurrentPrice resolves the current price for a ticker:
//
//  1. a cached latest price no older than the quote TTL is served as-is
//  2. otherwise a live quote is fetched and patched onto the cache
//  3. a failed live fetch falls back to the stale cached price
//  4. with neither cache nor live value, the ticker is not found
func (s *Service) GetCurrentPrice(ctx context.Context, fullTicker string) (*models.PriceResult, error) {
	if fullTicker == "" {
		return nil, &models.ValidationError{Field: "full_ticker", Message: "ticker is required"}
	}

	record, err := s.storage.SeriesStore().Get(ctx, fullTicker)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", fullTicker).Msg("Cache read failed, trying live quote")
		record = nil
	}

	now := s.now()

	if record != nil && record.Cache.LatestPrice > 0 &&
		common.IsFresh(record.Cache.LatestDate, common.FreshnessQuote, now) {
		return &models.PriceResult{
			FullTicker: fullTicker,
			Price:      record.Cache.LatestPrice,
			Date:       record.Cache.LatestDate,
			Source:     models.PriceSourceCache,
			Currency:   record.Currency,
		}, nil
	}

	symbol, exchange := identity.Split(fullTicker)

	quote, liveErr := s.client.FetchRealTimeQuote(ctx, symbol, exchange)
	if liveErr == nil && quote != nil && quote.Price > 0 {
		date := quote.Timestamp
		if date.IsZero() {
			date = now
		}

		currency := quote.Currency
		if record != nil {
			if currency == "" {
				currency = record.Currency
			}
			s.patchLatestPrice(ctx, record, quote.Price, date, now)
		}

		return &models.PriceResult{
			FullTicker: fullTicker,
			Price:      quote.Price,
			Date:       date,
			Source:     models.PriceSourceAPI,
			Currency:   currency,
		}, nil
	}

	if liveErr != nil {
		s.logger.Warn().Err(liveErr).Str("ticker", fullTicker).Msg("Live quote failed")
	}

	// Stale fallback: any cached price beats no price
	if record != nil && record.Cache.LatestPrice > 0 {
		return &models.PriceResult{
			FullTicker: fullTicker,
			Price:      record.Cache.LatestPrice,
			Date:       record.Cache.LatestDate,
			Source:     models.PriceSourceCacheFallback,
			Currency:   record.Currency,
		}, nil
	}

	return nil, &models.NotFoundError{Ticker: fullTicker}
}

// patchLatestPrice overlays a live quote onto the cached snapshot without
// touching history. A failed save only costs the next caller a re-fetch, so
// it is logged and swallowed.
func (s *Service) patchLatestPrice(ctx context.Context, record *models.TimeSeriesRecord, price float64, date, now time.Time) {
	unlock := s.lockTicker(record.FullTicker)
	defer unlock()

	// Re-read under the lock so the patch lands on top of any merge that
	// finished since the caller's read.
	if current, err := s.storage.SeriesStore().Get(ctx, record.FullTicker); err == nil && current != nil {
		record = current
	}

	record.Cache.LatestPrice = price
	record.Cache.LatestDate = date
	record.LastUpdated = now

	if err := s.storage.SeriesStore().Upsert(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("ticker", record.FullTicker).Msg("Failed to patch live price onto cache")
	}
}

// GetBatchPrices resolves prices for many tickers. Each ticker is resolved
// independently; a failure surfaces in that ticker's slot without aborting
// the rest.
func (s *Service) GetBatchPrices(ctx context.Context, fullTickers []string) (map[string]models.BatchPriceResult, error) {
	results := make(map[string]models.BatchPriceResult, len(fullTickers))

	for _, ticker := range fullTickers {
		if _, done := results[ticker]; done {
			continue
		}

		result, err := s.GetCurrentPrice(ctx, ticker)
		if err != nil {
			results[ticker] = models.BatchPriceResult{Error: err.Error()}
			continue
		}
		results[ticker] = models.BatchPriceResult{Result: result}
	}

	return results, nil
}
