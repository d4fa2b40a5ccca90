package admin

import (
	"context"
	"fmt"

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

type StaffUserInput struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Roles    []string `json:"roles"`
	IsActive *bool    `json:"is_active"`
}

func (s *Service) Create(ctx context.Context, in *StaffUserInput) (*StaffUser, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !ValidRoles(in.Roles) {
		return nil, fmt.Errorf("roles must be a non-empty list of known roles")
	}
	if existing, err := s.repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("a staff user with email %s already exists", in.Email)
	}
	u := &StaffUser{
		Name:     in.Name,
		Email:    in.Email,
		Roles:    in.Roles,
		IsActive: true,
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StaffUser, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *StaffUserInput) (*StaffUser, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !ValidRoles(in.Roles) {
		return nil, fmt.Errorf("roles must be a non-empty list of known roles")
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = in.Name
	u.Email = in.Email
	u.Roles = in.Roles
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Deactivate switches the account off without deleting it, so audit trails
// keep resolving the author of past changes.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*StaffUser, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = false
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*StaffUser, error) {
	return s.repo.List(ctx)
}
