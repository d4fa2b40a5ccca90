package doctor

import (
	"context"

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

type DoctorInput struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Specialty *string `json:"specialty"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
	IsActive  *bool   `json:"is_active"`
}

func (s *Service) Create(ctx context.Context, in *DoctorInput) (*Doctor, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	d := &Doctor{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Specialty: in.Specialty,
		Color:     in.Color,
		IsActive:  true,
	}
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *DoctorInput) (*Doctor, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d.FirstName = in.FirstName
	d.LastName = in.LastName
	d.Specialty = in.Specialty
	d.Color = in.Color
	if in.IsActive != nil {
		d.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete deactivates rather than removes: past appointments keep pointing
// at the doctor.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	d.IsActive = false
	return s.repo.Update(ctx, d)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Doctor, error) {
	return s.repo.List(ctx, activeOnly)
}
