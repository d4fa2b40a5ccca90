package inventory

import (
	"time"

	"github.com/google/uuid"
)

// StockItem is a consumable the practice keeps on the shelf. Threshold is
// the reorder level: at or below it the item counts as low stock.
type StockItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Reference *string   `db:"reference" json:"reference,omitempty"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Threshold int       `db:"threshold" json:"threshold"`
	UnitPrice *float64  `db:"unit_price" json:"unit_price,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LowStock reports whether the item is at or below its reorder level.
func (s *StockItem) LowStock() bool {
	return s.Quantity <= s.Threshold
}
