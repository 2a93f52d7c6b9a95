package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SeriesStore persists TimeSeriesRecord documents keyed by full ticker.
type SeriesStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSeriesStore(db *surrealdb.DB, logger *common.Logger) *SeriesStore {
	return &SeriesStore{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the record for a full ticker. Absent records return nil
// without error.
func (s *SeriesStore) Get(ctx context.Context, fullTicker string) (*models.TimeSeriesRecord, error) {
	record, err := surrealdb.Select[models.TimeSeriesRecord](ctx, s.db, surrealmodels.NewRecordID("price_series", fullTicker))
	if err != nil {
		return nil, fmt.Errorf("failed to select price series: %w", err)
	}
	if record == nil || record.FullTicker == "" {
		return nil, nil
	}
	return record, nil
}

// Upsert creates or replaces the record for its full ticker.
func (s *SeriesStore) Upsert(ctx context.Context, record *models.TimeSeriesRecord) error {
	sql := "UPSERT $rid CONTENT $data"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("price_series", record.FullTicker), "data": record}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.TimeSeriesRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save price series after retries: %w", lastErr)
}

// List returns all records.
func (s *SeriesStore) List(ctx context.Context) ([]*models.TimeSeriesRecord, error) {
	sql := "SELECT * FROM price_series"

	results, err := surrealdb.Query[[]models.TimeSeriesRecord](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list price series: %w", err)
	}

	var mapped []*models.TimeSeriesRecord
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
	}
	return mapped, nil
}

// Remove deletes the record for a full ticker.
func (s *SeriesStore) Remove(ctx context.Context, fullTicker string) error {
	sql := "DELETE $rid"
	vars := map[string]any{"rid": surrealmodels.NewRecordID("price_series", fullTicker)}

	if _, err := surrealdb.Query[any](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to delete price series: %w", err)
	}
	return nil
}

// RemoveAll deletes every record and returns the count removed.
func (s *SeriesStore) RemoveAll(ctx context.Context) (int, error) {
	sql := "DELETE price_series RETURN BEFORE"
	results, err := surrealdb.Query[[]models.TimeSeriesRecord](ctx, s.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to clear price series: %w", err)
	}
	if results != nil && len(*results) > 0 {
		return len((*results)[0].Result), nil
	}
	return 0, nil
}
