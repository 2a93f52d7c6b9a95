package timeseries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobmcallan/quotevault/internal/models"
)

func TestGetCachedBars_RangeFilter(t *testing.T) {
	storage := newMockStorage()
	svc := newTestService(storage, &mockClient{})

	record := &models.TimeSeriesRecord{
		FullTicker: "AAPL.US",
		History: []models.Bar{
			{Date: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), Close: 100},
			{Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), Close: 101},
			{Date: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), Close: 102},
			{Date: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), Close: 103},
		},
	}
	if err := storage.series.Upsert(context.Background(), record); err != nil {
		t.Fatal(err)
	}

	all, err := svc.GetCachedBars(context.Background(), "AAPL.US", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetCachedBars failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("unbounded query returned %d bars, want 4", len(all))
	}

	// Bounds are inclusive on both ends
	from := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	bounded, err := svc.GetCachedBars(context.Background(), "AAPL.US", from, to)
	if err != nil {
		t.Fatalf("GetCachedBars failed: %v", err)
	}
	if len(bounded) != 2 || bounded[0].Close != 101 || bounded[1].Close != 102 {
		t.Errorf("bounded bars = %+v", bounded)
	}

	// Half-open: only a lower bound
	tail, err := svc.GetCachedBars(context.Background(), "AAPL.US", from, time.Time{})
	if err != nil {
		t.Fatalf("GetCachedBars failed: %v", err)
	}
	if len(tail) != 3 {
		t.Errorf("lower-bounded query returned %d bars, want 3", len(tail))
	}
}

func TestGetCachedBars_NotFound(t *testing.T) {
	svc := newTestService(newMockStorage(), &mockClient{})

	_, err := svc.GetCachedBars(context.Background(), "MISSING.US", time.Time{}, time.Time{})

	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *models.NotFoundError", err)
	}
}

func TestGetCacheStats(t *testing.T) {
	storage := newMockStorage()
	svc := newTestService(storage, &mockClient{})

	oldest := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)

	records := []*models.TimeSeriesRecord{
		{FullTicker: "AAPL.US", DataPoints: 500, FirstDate: oldest, LastDate: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)},
		{FullTicker: "OR.PA", DataPoints: 250, FirstDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), LastDate: newest},
	}
	for _, record := range records {
		if err := storage.series.Upsert(context.Background(), record); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := svc.GetCacheStats(context.Background())
	if err != nil {
		t.Fatalf("GetCacheStats failed: %v", err)
	}

	if stats.TotalStocks != 2 || stats.TotalDataPoints != 750 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.OldestDate == nil || !stats.OldestDate.Equal(oldest) {
		t.Errorf("OldestDate = %v, want %v", stats.OldestDate, oldest)
	}
	if stats.NewestDate == nil || !stats.NewestDate.Equal(newest) {
		t.Errorf("NewestDate = %v, want %v", stats.NewestDate, newest)
	}
}

func TestGetCacheStats_Empty(t *testing.T) {
	svc := newTestService(newMockStorage(), &mockClient{})

	stats, err := svc.GetCacheStats(context.Background())
	if err != nil {
		t.Fatalf("GetCacheStats failed: %v", err)
	}
	if stats.TotalStocks != 0 || stats.OldestDate != nil || stats.NewestDate != nil {
		t.Errorf("empty cache stats = %+v", stats)
	}
}

func TestClearCache_SingleTicker(t *testing.T) {
	storage := newMockStorage()
	svc := newTestService(storage, &mockClient{})

	for _, ticker := range []string{"AAPL.US", "OR.PA"} {
		if err := storage.series.Upsert(context.Background(), &models.TimeSeriesRecord{FullTicker: ticker}); err != nil {
			t.Fatal(err)
		}
	}

	count, err := svc.ClearCache(context.Background(), "AAPL.US")
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	if record, _ := storage.series.Get(context.Background(), "OR.PA"); record == nil {
		t.Error("other records must survive a single-ticker clear")
	}
}

func TestClearCache_All(t *testing.T) {
	storage := newMockStorage()
	svc := newTestService(storage, &mockClient{})

	for _, ticker := range []string{"AAPL.US", "OR.PA", "SAP.DE"} {
		if err := storage.series.Upsert(context.Background(), &models.TimeSeriesRecord{FullTicker: ticker}); err != nil {
			t.Fatal(err)
		}
	}

	count, err := svc.ClearCache(context.Background(), "")
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestClearCache_MissingTicker(t *testing.T) {
	svc := newTestService(newMockStorage(), &mockClient{})

	_, err := svc.ClearCache(context.Background(), "MISSING.US")

	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *models.NotFoundError", err)
	}
}
