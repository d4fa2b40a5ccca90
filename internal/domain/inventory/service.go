package inventory

import (
	"context"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

type StockItemInput struct {
	Name      string   `json:"name" validate:"required"`
	Reference *string  `json:"reference"`
	Quantity  int      `json:"quantity" validate:"min=0"`
	Threshold int      `json:"threshold" validate:"min=0"`
	UnitPrice *float64 `json:"unit_price" validate:"omitempty,min=0"`
}

func (in *StockItemInput) apply(s *StockItem) {
	s.Name = in.Name
	s.Reference = in.Reference
	s.Quantity = in.Quantity
	s.Threshold = in.Threshold
	s.UnitPrice = in.UnitPrice
}

func (s *Service) Create(ctx context.Context, in *StockItemInput) (*StockItem, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	item := &StockItem{}
	in.apply(item)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *StockItemInput) (*StockItem, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(item)
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*StockItem, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListLowStock(ctx context.Context) ([]*StockItem, error) {
	return s.repo.ListLowStock(ctx)
}

// AdjustQuantity applies a signed delta to an item's quantity, flooring at
// zero. Used by the +/- buttons on the stock list.
func (s *Service) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*StockItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Quantity += delta
	if item.Quantity < 0 {
		item.Quantity = 0
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ImportCSV replaces the whole inventory with the contents of a CSV file.
// The parse happens up front; nothing is touched unless every row is valid,
// and the swap itself is transactional.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	items, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}
	if err := s.repo.ReplaceAll(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
