package recall

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Recall) error
	Get(ctx context.Context, id uuid.UUID) (*Recall, error)
	Update(ctx context.Context, r *Recall) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Recall, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Recall, error)

	// ListDue returns PENDING recalls whose due date is on or before the
	// given day.
	ListDue(ctx context.Context, by time.Time) ([]*Recall, error)
}
