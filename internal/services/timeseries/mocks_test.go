package timeseries

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/interfaces"
	"github.com/bobmcallan/quotevault/internal/models"
)

// memSeriesStore is an in-memory SeriesStore for service tests.
type memSeriesStore struct {
	mu      sync.Mutex
	records map[string]*models.TimeSeriesRecord

	getErr    error
	upsertErr error
}

func newMemSeriesStore() *memSeriesStore {
	return &memSeriesStore{records: make(map[string]*models.TimeSeriesRecord)}
}

func (s *memSeriesStore) Get(_ context.Context, fullTicker string) (*models.TimeSeriesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	record, ok := s.records[fullTicker]
	if !ok {
		return nil, nil
	}
	copied := *record
	copied.History = append([]models.Bar(nil), record.History...)
	return &copied, nil
}

func (s *memSeriesStore) Upsert(_ context.Context, record *models.TimeSeriesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	copied := *record
	copied.History = append([]models.Bar(nil), record.History...)
	s.records[record.FullTicker] = &copied
	return nil
}

func (s *memSeriesStore) List(_ context.Context) ([]*models.TimeSeriesRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TimeSeriesRecord
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *memSeriesStore) Remove(_ context.Context, fullTicker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, fullTicker)
	return nil
}

func (s *memSeriesStore) RemoveAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.records)
	s.records = make(map[string]*models.TimeSeriesRecord)
	return count, nil
}

// mockProductStore returns a canned product list
type mockProductStore struct {
	products []*models.Product
	err      error
}

func (s *mockProductStore) ListProducts(_ context.Context) ([]*models.Product, error) {
	return s.products, s.err
}

// mockStorage wires the in-memory stores into a StorageManager
type mockStorage struct {
	series   *memSeriesStore
	products *mockProductStore
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		series:   newMemSeriesStore(),
		products: &mockProductStore{},
	}
}

func (m *mockStorage) SeriesStore() interfaces.SeriesStore   { return m.series }
func (m *mockStorage) ProductStore() interfaces.ProductStore { return m.products }
func (m *mockStorage) Close() error                          { return nil }

// mockClient is a MarketDataClient with pluggable behavior per method
type mockClient struct {
	fetchBarsFunc  func(ctx context.Context, symbol, exchange string, from, to time.Time) ([]models.RawBar, error)
	fetchQuoteFunc func(ctx context.Context, symbol, exchange string) (*models.RealTimeQuote, error)
	searchFunc     func(ctx context.Context, query string, limit int) ([]*models.SecurityMeta, error)

	barCalls   []string
	quoteCalls []string
}

func (c *mockClient) Name() string { return "mock" }

func (c *mockClient) FetchHistoricalBars(ctx context.Context, symbol, exchange string, from, to time.Time) ([]models.RawBar, error) {
	c.barCalls = append(c.barCalls, symbol+"."+exchange)
	if c.fetchBarsFunc == nil {
		return nil, nil
	}
	return c.fetchBarsFunc(ctx, symbol, exchange, from, to)
}

func (c *mockClient) FetchRealTimeQuote(ctx context.Context, symbol, exchange string) (*models.RealTimeQuote, error) {
	c.quoteCalls = append(c.quoteCalls, symbol+"."+exchange)
	if c.fetchQuoteFunc == nil {
		return nil, nil
	}
	return c.fetchQuoteFunc(ctx, symbol, exchange)
}

func (c *mockClient) SearchSecurities(ctx context.Context, query string, limit int) ([]*models.SecurityMeta, error) {
	if c.searchFunc == nil {
		return nil, nil
	}
	return c.searchFunc(ctx, query, limit)
}

// testNow is the fixed clock all service tests run against
var testNow = time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)

func newTestService(storage *mockStorage, client *mockClient) *Service {
	return NewService(storage, client, common.NewSilentLogger(), WithClock(func() time.Time {
		return testNow
	}))
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// rawBarsOn builds one raw bar per date string with close = price
func rawBarsOn(dates []string, prices []float64) []models.RawBar {
	bars := make([]models.RawBar, len(dates))
	for i, date := range dates {
		bars[i] = models.RawBar{
			Date:  date,
			Open:  prices[i],
			High:  prices[i] + 1,
			Low:   prices[i] - 1,
			Close: prices[i],
		}
	}
	return bars
}
