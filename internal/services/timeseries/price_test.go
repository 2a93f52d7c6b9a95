package timeseries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobmcallan/quotevault/internal/models"
)

func seedRecord(t *testing.T, storage *mockStorage, ticker string, price float64, latestAge time.Duration) {
	t.Helper()
	record := &models.TimeSeriesRecord{
		FullTicker: ticker,
		Currency:   "USD",
		History: []models.Bar{
			{Date: testNow.AddDate(0, 0, -1), Close: price},
		},
		Cache: models.DerivedCache{
			LatestPrice: price,
			LatestDate:  testNow.Add(-latestAge),
		},
	}
	if err := storage.series.Upsert(context.Background(), record); err != nil {
		t.Fatal(err)
	}
}

func TestGetCurrentPrice_FreshCache(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{}
	svc := newTestService(storage, client)

	seedRecord(t, storage, "AAPL.US", 150.25, 5*time.Minute)

	result, err := svc.GetCurrentPrice(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}

	if result.Source != models.PriceSourceCache {
		t.Errorf("Source = %q, want cache", result.Source)
	}
	if result.Price != 150.25 {
		t.Errorf("Price = %v, want 150.25", result.Price)
	}
	if len(client.quoteCalls) != 0 {
		t.Error("fresh cache must not trigger a live fetch")
	}
}

func TestGetCurrentPrice_FreshnessBoundaryInclusive(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{}
	svc := newTestService(storage, client)

	// Exactly at the TTL still counts as fresh
	seedRecord(t, storage, "AAPL.US", 150.25, 15*time.Minute)

	result, err := svc.GetCurrentPrice(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}
	if result.Source != models.PriceSourceCache {
		t.Errorf("Source = %q, want cache at exact boundary", result.Source)
	}
}

func TestGetCurrentPrice_StaleCacheGoesLive(t *testing.T) {
	storage := newMockStorage()
	quoteTime := testNow.Add(-time.Minute)
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, _, _ string) (*models.RealTimeQuote, error) {
			return &models.RealTimeQuote{Price: 151.5, Timestamp: quoteTime}, nil
		},
	}
	svc := newTestService(storage, client)

	seedRecord(t, storage, "AAPL.US", 150.25, time.Hour)

	result, err := svc.GetCurrentPrice(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}

	if result.Source != models.PriceSourceAPI {
		t.Errorf("Source = %q, want api", result.Source)
	}
	if result.Price != 151.5 {
		t.Errorf("Price = %v, want 151.5", result.Price)
	}
	if result.Currency != "USD" {
		t.Errorf("Currency = %q, want USD from record", result.Currency)
	}

	// The live quote is patched onto the cache without touching history
	record, _ := storage.series.Get(context.Background(), "AAPL.US")
	if record.Cache.LatestPrice != 151.5 {
		t.Errorf("patched LatestPrice = %v, want 151.5", record.Cache.LatestPrice)
	}
	if !record.Cache.LatestDate.Equal(quoteTime) {
		t.Errorf("patched LatestDate = %v, want %v", record.Cache.LatestDate, quoteTime)
	}
	if len(record.History) != 1 {
		t.Errorf("history len = %d, live patch must not append bars", len(record.History))
	}
}

func TestGetCurrentPrice_LiveFailureFallsBackToStaleCache(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, _, _ string) (*models.RealTimeQuote, error) {
			return nil, errors.New("provider down")
		},
	}
	svc := newTestService(storage, client)

	seedRecord(t, storage, "AAPL.US", 150.25, 48*time.Hour)

	result, err := svc.GetCurrentPrice(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}

	if result.Source != models.PriceSourceCacheFallback {
		t.Errorf("Source = %q, want cache_fallback", result.Source)
	}
	if result.Price != 150.25 {
		t.Errorf("fallback must preserve the cached price, got %v", result.Price)
	}
}

func TestGetCurrentPrice_ZeroQuoteFallsBack(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, _, _ string) (*models.RealTimeQuote, error) {
			// Market closed: provider answers but with no usable price
			return &models.RealTimeQuote{Price: 0}, nil
		},
	}
	svc := newTestService(storage, client)

	seedRecord(t, storage, "AAPL.US", 150.25, 48*time.Hour)

	result, err := svc.GetCurrentPrice(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}
	if result.Source != models.PriceSourceCacheFallback {
		t.Errorf("Source = %q, want cache_fallback", result.Source)
	}
}

func TestGetCurrentPrice_NotFound(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, _, _ string) (*models.RealTimeQuote, error) {
			return nil, errors.New("provider down")
		},
	}
	svc := newTestService(storage, client)

	_, err := svc.GetCurrentPrice(context.Background(), "UNKNOWN.US")

	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *models.NotFoundError", err)
	}
}

func TestGetCurrentPrice_LiveWithoutCachedRecord(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, _, _ string) (*models.RealTimeQuote, error) {
			return &models.RealTimeQuote{Price: 99.9, Currency: "EUR"}, nil
		},
	}
	svc := newTestService(storage, client)

	result, err := svc.GetCurrentPrice(context.Background(), "OR.PA")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}

	if result.Source != models.PriceSourceAPI || result.Price != 99.9 {
		t.Errorf("result = %+v", result)
	}
	// Zero quote timestamp falls back to now
	if !result.Date.Equal(testNow) {
		t.Errorf("Date = %v, want %v", result.Date, testNow)
	}

	// Records are created by merges, never by price lookups
	record, _ := storage.series.Get(context.Background(), "OR.PA")
	if record != nil {
		t.Error("price lookup must not create a cache record")
	}
}

func TestGetCurrentPrice_CacheReadFailureStillGoesLive(t *testing.T) {
	storage := newMockStorage()
	storage.series.getErr = errors.New("db down")
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, _, _ string) (*models.RealTimeQuote, error) {
			return &models.RealTimeQuote{Price: 151.5}, nil
		},
	}
	svc := newTestService(storage, client)

	result, err := svc.GetCurrentPrice(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}
	if result.Source != models.PriceSourceAPI || result.Price != 151.5 {
		t.Errorf("result = %+v", result)
	}
}

func TestGetCurrentPrice_PatchSaveFailureIsSwallowed(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, _, _ string) (*models.RealTimeQuote, error) {
			return &models.RealTimeQuote{Price: 151.5}, nil
		},
	}
	svc := newTestService(storage, client)

	seedRecord(t, storage, "AAPL.US", 150.25, time.Hour)
	storage.series.upsertErr = errors.New("db down")

	result, err := svc.GetCurrentPrice(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice failed: %v", err)
	}
	if result.Price != 151.5 {
		t.Errorf("live price should be returned even when the patch save fails, got %v", result.Price)
	}
}

func TestGetBatchPrices_Isolation(t *testing.T) {
	storage := newMockStorage()
	client := &mockClient{
		fetchQuoteFunc: func(_ context.Context, symbol, _ string) (*models.RealTimeQuote, error) {
			if symbol == "FAIL" {
				return nil, errors.New("provider down")
			}
			return &models.RealTimeQuote{Price: 42}, nil
		},
	}
	svc := newTestService(storage, client)

	results, err := svc.GetBatchPrices(context.Background(), []string{"AAPL.US", "FAIL.US", "MSFT.US"})
	if err != nil {
		t.Fatalf("GetBatchPrices failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if results["AAPL.US"].Result == nil || results["AAPL.US"].Result.Price != 42 {
		t.Errorf("AAPL.US = %+v", results["AAPL.US"])
	}
	if results["MSFT.US"].Result == nil {
		t.Errorf("MSFT.US should succeed despite the middle failure: %+v", results["MSFT.US"])
	}
	if results["FAIL.US"].Error == "" || results["FAIL.US"].Result != nil {
		t.Errorf("FAIL.US = %+v, want error only", results["FAIL.US"])
	}
}
