package admin

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *StaffUser) error
	Get(ctx context.Context, id uuid.UUID) (*StaffUser, error)
	GetByEmail(ctx context.Context, email string) (*StaffUser, error)
	Update(ctx context.Context, u *StaffUser) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*StaffUser, error)
}
