// Package interfaces defines service contracts for quotevault
package interfaces

import (
	"context"

	"github.com/bobmcallan/quotevault/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	SeriesStore() SeriesStore
	ProductStore() ProductStore

	Close() error
}

// SeriesStore owns time-series record persistence. It is a key-value cache:
// exact-key lookup and full scan only, no query language.
type SeriesStore interface {
	// Get retrieves the record for a full ticker; returns nil when absent
	Get(ctx context.Context, fullTicker string) (*models.TimeSeriesRecord, error)

	// Upsert creates or replaces the record for its full ticker
	Upsert(ctx context.Context, record *models.TimeSeriesRecord) error

	// List returns all records
	List(ctx context.Context) ([]*models.TimeSeriesRecord, error)

	// Remove deletes the record for a full ticker
	Remove(ctx context.Context, fullTicker string) error

	// RemoveAll deletes every record and returns the count removed
	RemoveAll(ctx context.Context) (int, error)
}

// ProductStore reads the portfolio product documents written by the
// platform. quotevault never writes products.
type ProductStore interface {
	// ListProducts returns all tracked products
	ListProducts(ctx context.Context) ([]*models.Product, error)
}
