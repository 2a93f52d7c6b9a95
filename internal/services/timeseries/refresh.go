package timeseries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/quotevault/internal/identity"
	"github.com/bobmcallan/quotevault/internal/models"
)

// refreshTarget is one security selected for a refresh run with its
// per-ticker fetch window.
type refreshTarget struct {
	fullTicker string
	from       time.Time
	to         time.Time
}

// RefreshCache merges provider history for the selected tickers, or for
// every security discovered across tracked products when no tickers are
// given. Tickers are processed sequentially; one ticker's failure is
// recorded and the run continues.
func (s *Service) RefreshCache(ctx context.Context, selectors models.RefreshSelectors) (*models.RefreshResult, error) {
	result := &models.RefreshResult{
		RunID:     uuid.New().String(),
		StartedAt: s.now(),
	}

	var (
		targets []refreshTarget
		err     error
	)
	if len(selectors.Tickers) > 0 {
		targets = s.explicitTargets(selectors)
	} else {
		targets, err = s.discoverTargets(ctx, selectors)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("tickers", len(targets)).
		Msg("Starting cache refresh")

	for _, target := range targets {
		tickerResult := models.TickerRefreshResult{
			FullTicker: target.fullTicker,
			FromDate:   target.from,
			ToDate:     target.to,
		}

		summary, err := s.MergeHistoricalRange(ctx, target.fullTicker, target.from, target.to)
		if err != nil {
			s.logger.Warn().Err(err).Str("ticker", target.fullTicker).Msg("Refresh failed for ticker")
			tickerResult.Error = err.Error()
			result.Summary.Errors++
		} else {
			tickerResult.Cached = summary.Cached
			tickerResult.Skipped = summary.Skipped
			result.Summary.Add(*summary)
		}

		result.Tickers = append(result.Tickers, tickerResult)
	}

	result.FinishedAt = s.now()

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("cached", result.Summary.Cached).
		Int("skipped", result.Summary.Skipped).
		Int("errors", result.Summary.Errors).
		Msg("Cache refresh finished")

	return result, nil
}

// explicitTargets builds the refresh list from caller-supplied tickers.
// Every ticker shares the same window.
func (s *Service) explicitTargets(selectors models.RefreshSelectors) []refreshTarget {
	from := selectors.FromDate
	if from.IsZero() {
		from = s.defaultLookbackStart()
	}
	to := selectors.ToDate
	if to.IsZero() {
		to = s.now()
	}

	seen := make(map[string]struct{}, len(selectors.Tickers))
	targets := make([]refreshTarget, 0, len(selectors.Tickers))
	for _, ticker := range selectors.Tickers {
		full, ok := identity.Resolve(models.SecurityRef{FullTicker: ticker, Ticker: ticker})
		if !ok {
			continue
		}
		if _, dup := seen[full]; dup {
			continue
		}
		seen[full] = struct{}{}
		targets = append(targets, refreshTarget{fullTicker: full, from: from, to: to})
	}
	return targets
}

// discoverTargets scans every tracked product, resolves each security
// reference to its full ticker and fetches from the earliest product
// reference date minus the analytics buffer. A security held by several
// products gets the earliest window among them.
func (s *Service) discoverTargets(ctx context.Context, selectors models.RefreshSelectors) ([]refreshTarget, error) {
	products, err := s.storage.ProductStore().ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	earliest := make(map[string]time.Time)
	for _, product := range products {
		refDate := product.EarliestReferenceDate()

		for _, ref := range product.SecurityRefs() {
			full, ok := identity.Resolve(ref)
			if !ok {
				s.logger.Warn().
					Str("product", product.Name).
					Str("name", ref.Name).
					Msg("Skipping unresolvable security reference")
				continue
			}

			current, seen := earliest[full]
			if !seen || (!refDate.IsZero() && (current.IsZero() || refDate.Before(current))) {
				earliest[full] = refDate
			}
		}
	}

	to := selectors.ToDate
	if to.IsZero() {
		to = s.now()
	}

	tickers := make([]string, 0, len(earliest))
	for ticker := range earliest {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	targets := make([]refreshTarget, 0, len(tickers))
	for _, ticker := range tickers {
		from := earliest[ticker]
		if from.IsZero() {
			from = s.defaultLookbackStart()
		} else {
			from = from.AddDate(0, 0, -s.lookbackBufferDays)
		}
		targets = append(targets, refreshTarget{fullTicker: ticker, from: from, to: to})
	}
	return targets, nil
}
