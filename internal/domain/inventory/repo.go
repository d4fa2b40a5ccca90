package inventory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *StockItem) error
	Get(ctx context.Context, id uuid.UUID) (*StockItem, error)
	Update(ctx context.Context, s *StockItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*StockItem, int, error)
	ListLowStock(ctx context.Context) ([]*StockItem, error)

	// ReplaceAll swaps the entire inventory for the given items in a single
	// transaction; either every row lands or none do.
	ReplaceAll(ctx context.Context, items []*StockItem) error
}
