package patient

import (
	"context"
	"time"

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

type PatientInput struct {
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	BirthDate *time.Time `json:"birth_date"`
	Sex       *string    `json:"sex" validate:"omitempty,oneof=M F OTHER"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone"`
	Address   *string    `json:"address"`
	Notes     *string    `json:"notes"`
}

func (in *PatientInput) apply(p *Patient) {
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.BirthDate = in.BirthDate
	p.Sex = in.Sex
	p.Email = in.Email
	p.Phone = in.Phone
	p.Address = in.Address
	p.Notes = in.Notes
}

func (s *Service) Create(ctx context.Context, in *PatientInput) (*Patient, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	p := &Patient{}
	in.apply(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *PatientInput) (*Patient, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// List returns patients alphabetically; a non-empty query switches to a
// case-insensitive name search.
func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	if query != "" {
		return s.repo.Search(ctx, query, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
