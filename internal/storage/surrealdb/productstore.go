package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/quotevault/internal/common"
	"github.com/bobmcallan/quotevault/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// ProductStore reads product documents written by the portfolio platform.
type ProductStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewProductStore(db *surrealdb.DB, logger *common.Logger) *ProductStore {
	return &ProductStore{
		db:     db,
		logger: logger,
	}
}

// ListProducts returns all tracked products.
func (s *ProductStore) ListProducts(ctx context.Context) ([]*models.Product, error) {
	sql := "SELECT * FROM product"

	results, err := surrealdb.Query[[]models.Product](ctx, s.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var mapped []*models.Product
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
	}
	return mapped, nil
}
