package admin

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/platform/auth"
)

type mockRepo struct {
	users map[uuid.UUID]*StaffUser
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*StaffUser)}
}

func (m *mockRepo) Create(_ context.Context, u *StaffUser) error {
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) Get(_ context.Context, id uuid.UUID) (*StaffUser, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("staff user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*StaffUser, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("staff user not found")
}

func (m *mockRepo) Update(_ context.Context, u *StaffUser) error {
	if _, ok := m.users[u.ID]; !ok {
		return fmt.Errorf("staff user not found")
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*StaffUser, error) {
	var out []*StaffUser
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func TestCreateStaffUser(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Create(context.Background(), &StaffUserInput{
		Name:  "Claire Moreau",
		Email: "claire@practice.example",
		Roles: []string{auth.RoleReceptionist},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Error("expected an assigned ID")
	}
	if !u.IsActive {
		t.Error("new accounts default to active")
	}
}

func TestCreateStaffUserValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name string
		in   StaffUserInput
	}{
		{"missing name", StaffUserInput{Email: "a@b.c", Roles: []string{auth.RoleAdmin}}},
		{"bad email", StaffUserInput{Name: "A", Email: "nope", Roles: []string{auth.RoleAdmin}}},
		{"no roles", StaffUserInput{Name: "A", Email: "a@b.c"}},
		{"unknown role", StaffUserInput{Name: "A", Email: "a@b.c", Roles: []string{"janitor"}}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), &tc.in); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestCreateStaffUserDuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())

	in := StaffUserInput{Name: "Claire", Email: "claire@practice.example", Roles: []string{auth.RoleAdmin}}
	if _, err := svc.Create(context.Background(), &in); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), &in); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestDeactivateKeepsRecord(t *testing.T) {
	svc := NewService(newMockRepo())

	u, err := svc.Create(context.Background(), &StaffUserInput{
		Name: "Claire", Email: "claire@practice.example", Roles: []string{auth.RoleDentist},
	})
	if err != nil {
		t.Fatal(err)
	}

	deactivated, err := svc.Deactivate(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deactivated.IsActive {
		t.Error("account still active")
	}
	if _, err := svc.Get(context.Background(), u.ID); err != nil {
		t.Errorf("deactivated account should still resolve: %v", err)
	}
}
