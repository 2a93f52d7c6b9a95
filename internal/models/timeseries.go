// Package models defines data structures for quotevault
package models

import (
	"time"
)

// TimeSeriesRecord is the per-security cache document. One record exists per
// full ticker; history holds the end-of-day bars sorted ascending by date
// with no duplicate dates, and Cache holds the derived quick-access snapshot.
type TimeSeriesRecord struct {
	FullTicker  string       `json:"full_ticker"`
	Symbol      string       `json:"symbol"`
	Exchange    string       `json:"exchange"`
	Currency    string       `json:"currency"`
	DataSource  string       `json:"data_source"`
	FirstDate   time.Time    `json:"first_date"`
	LastDate    time.Time    `json:"last_date"`
	DataPoints  int          `json:"data_points"`
	LastUpdated time.Time    `json:"last_updated"`
	History     []Bar        `json:"history"`
	Cache       DerivedCache `json:"cache"`
}

// Bar represents a single day's price data
type Bar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// DateKey returns the calendar-date key used for deduplication.
// Time-of-day is never part of bar identity.
func (b Bar) DateKey() string {
	return b.Date.Format("2006-01-02")
}

// DerivedCache is the quick-access snapshot derived from History.
// LatestPrice and LatestDate may additionally be patched by a live quote
// without a corresponding history append (intraday overlay); everything
// else is a pure function of History.
type DerivedCache struct {
	LatestPrice float64   `json:"latest_price"`
	LatestDate  time.Time `json:"latest_date"`
	High52Week  *float64  `json:"high_52_week,omitempty"`
	Low52Week   *float64  `json:"low_52_week,omitempty"`
	SMA20       float64   `json:"sma_20"`
	SMA50       float64   `json:"sma_50"`
	SMA200      float64   `json:"sma_200"`
}

// RawBar represents a provider-supplied daily record before normalization.
// AdjustedClose is zero when the provider omits it.
type RawBar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// RealTimeQuote holds a live price snapshot from the provider
type RealTimeQuote struct {
	Code      string    `json:"code"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_p"`
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SecurityMeta describes a security returned by the provider search endpoint
type SecurityMeta struct {
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Country  string `json:"Country"`
	Exchange string `json:"Exchange"`
	Currency string `json:"Currency"`
	Type     string `json:"Type"`
	ISIN     string `json:"ISIN,omitempty"`
}

// PriceSource identifies how a current-price result was produced
type PriceSource string

const (
	PriceSourceCache         PriceSource = "cache"
	PriceSourceAPI           PriceSource = "api"
	PriceSourceCacheFallback PriceSource = "cache_fallback"
)

// PriceResult is the answer to a current-price query
type PriceResult struct {
	FullTicker string      `json:"full_ticker"`
	Price      float64     `json:"price"`
	Date       time.Time   `json:"date"`
	Source     PriceSource `json:"source"`
	Currency   string      `json:"currency,omitempty"`
}

// BatchPriceResult holds a per-ticker price or error from a batch lookup
type BatchPriceResult struct {
	Result *PriceResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// MergeSummary reports the outcome of a single historical merge
type MergeSummary struct {
	Cached  int `json:"cached"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Add accumulates another summary into this one
func (s *MergeSummary) Add(other MergeSummary) {
	s.Cached += other.Cached
	s.Skipped += other.Skipped
	s.Errors += other.Errors
}

// TickerRefreshResult records the per-ticker outcome of a batch refresh
type TickerRefreshResult struct {
	FullTicker string    `json:"full_ticker"`
	FromDate   time.Time `json:"from_date"`
	ToDate     time.Time `json:"to_date"`
	Cached     int       `json:"cached"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
}

// RefreshResult is the aggregate outcome of a batch refresh run
type RefreshResult struct {
	RunID      string                `json:"run_id"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Summary    MergeSummary          `json:"summary"`
	Tickers    []TickerRefreshResult `json:"tickers"`
}

// RefreshSelectors configures a batch refresh. An empty Tickers list selects
// auto-discovery mode over all tracked products.
type RefreshSelectors struct {
	Tickers  []string  `json:"tickers,omitempty"`
	FromDate time.Time `json:"from_date,omitempty"`
	ToDate   time.Time `json:"to_date,omitempty"`
}

// CacheStats summarizes the whole cache
type CacheStats struct {
	TotalStocks     int        `json:"total_stocks"`
	TotalDataPoints int        `json:"total_data_points"`
	OldestDate      *time.Time `json:"oldest_date,omitempty"`
	NewestDate      *time.Time `json:"newest_date,omitempty"`
}
