package timeseries

import (
	"context"
	"sort"
	"time"

	"github.com/bobmcallan/quotevault/internal/identity"
	"github.com/bobmcallan/quotevault/internal/models"
)

// barDateLayout is the provider's calendar-date format
const barDateLayout = "2006-01-02"

// MergeHistoricalRange fetches daily bars for [from, to] from the provider
// and merges them into the cached history for the ticker. Existing bars win
// on date collision, the merged history stays sorted ascending, and the
// derived snapshot is recomputed before the record is saved. Merging the
// same range twice is a no-op on the stored history.
func (s *Service) MergeHistoricalRange(ctx context.Context, fullTicker string, from, to time.Time) (*models.MergeSummary, error) {
	if fullTicker == "" {
		return nil, &models.ValidationError{Field: "full_ticker", Message: "ticker is required"}
	}
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = s.defaultLookbackStart()
	}
	if from.After(to) {
		return nil, &models.ValidationError{Field: "from_date", Message: "from date is after to date"}
	}

	symbol, exchange := identity.Split(fullTicker)

	raw, err := s.client.FetchHistoricalBars(ctx, symbol, exchange, from, to)
	if err != nil {
		return nil, &models.ProviderFetchError{Ticker: fullTicker, Endpoint: "eod", Err: err}
	}

	summary := &models.MergeSummary{}

	// An empty provider response leaves the cache untouched: no shell
	// record, no snapshot churn.
	if len(raw) == 0 {
		s.logger.Debug().Str("ticker", fullTicker).Msg("Provider returned no bars for range")
		return summary, nil
	}

	bars, dropped := normalizeBars(raw)
	summary.Errors += dropped

	unlock := s.lockTicker(fullTicker)
	defer unlock()

	record, err := s.storage.SeriesStore().Get(ctx, fullTicker)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &models.TimeSeriesRecord{
			FullTicker: fullTicker,
			Symbol:     symbol,
			Exchange:   exchange,
			Currency:   "USD",
			DataSource: s.client.Name(),
		}
	}

	existing := make(map[string]struct{}, len(record.History))
	for _, bar := range record.History {
		existing[bar.DateKey()] = struct{}{}
	}

	for _, bar := range bars {
		key := bar.DateKey()
		if _, ok := existing[key]; ok {
			summary.Skipped++
			continue
		}
		existing[key] = struct{}{}
		record.History = append(record.History, bar)
		summary.Cached++
	}

	// Everything dropped and nothing cached before: no record to write
	if len(record.History) == 0 {
		return summary, nil
	}

	if summary.Cached > 0 {
		sort.Slice(record.History, func(i, j int) bool {
			return record.History[i].Date.Before(record.History[j].Date)
		})
	}

	now := s.now()
	record.FirstDate = record.History[0].Date
	record.LastDate = record.History[len(record.History)-1].Date
	record.DataPoints = len(record.History)
	record.LastUpdated = now
	record.Cache = computeSnapshot(record.History, now)

	if err := s.storage.SeriesStore().Upsert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("ticker", fullTicker).
		Int("cached", summary.Cached).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Int("total", record.DataPoints).
		Msg("Merged historical bars")

	return summary, nil
}

// normalizeBars converts provider bars into cache bars, dropping any with an
// unparseable date and counting them. A missing adjusted close falls back to
// the raw close.
func normalizeBars(raw []models.RawBar) (bars []models.Bar, dropped int) {
	bars = make([]models.Bar, 0, len(raw))
	for _, r := range raw {
		date, err := time.Parse(barDateLayout, r.Date)
		if err != nil {
			dropped++
			continue
		}

		adjClose := r.AdjustedClose
		if adjClose == 0 {
			adjClose = r.Close
		}

		bars = append(bars, models.Bar{
			Date:     date.UTC(),
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			AdjClose: adjClose,
			Volume:   r.Volume,
		})
	}
	return bars, dropped
}
