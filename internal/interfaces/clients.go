// Package interfaces defines service contracts for quotevault
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/quotevault/internal/models"
)

// MarketDataClient provides access to the upstream market-data provider
type MarketDataClient interface {
	// Name identifies the provider (recorded on cache documents as data_source)
	Name() string

	// FetchHistoricalBars retrieves daily bars for [from, to] inclusive
	FetchHistoricalBars(ctx context.Context, symbol, exchange string, from, to time.Time) ([]models.RawBar, error)

	// FetchRealTimeQuote retrieves the current live quote
	FetchRealTimeQuote(ctx context.Context, symbol, exchange string) (*models.RealTimeQuote, error)

	// SearchSecurities looks up securities matching a free-text query
	SearchSecurities(ctx context.Context, query string, limit int) ([]*models.SecurityMeta, error)
}
