package patient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Get(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("patient not found")
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, len(out), nil
}

func (m *mockRepo) Search(_ context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	q := strings.ToLower(query)
	var out []*Patient
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.FullName()), q) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func strPtr(s string) *string { return &s }

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Create(context.Background(), &PatientInput{
		FirstName: "Marie",
		LastName:  "Dubois",
		Email:     strPtr("marie@example.com"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected an assigned ID")
	}
	if p.FullName() != "Marie Dubois" {
		t.Errorf("FullName = %q", p.FullName())
	}
}

func TestCreatePatientValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.Create(context.Background(), &PatientInput{LastName: "Dubois"}); err == nil {
		t.Error("expected error for missing first name")
	}
	if _, err := svc.Create(context.Background(), &PatientInput{
		FirstName: "Marie", LastName: "Dubois", Email: strPtr("not-an-email"),
	}); err == nil {
		t.Error("expected error for malformed email")
	}
	if _, err := svc.Create(context.Background(), &PatientInput{
		FirstName: "Marie", LastName: "Dubois", Sex: strPtr("X"),
	}); err == nil {
		t.Error("expected error for unknown sex value")
	}
}

func TestUpdatePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Create(context.Background(), &PatientInput{FirstName: "Marie", LastName: "Dubois"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(context.Background(), p.ID, &PatientInput{
		FirstName: "Marie",
		LastName:  "Martin",
		Phone:     strPtr("+33 6 12 34 56 78"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.LastName != "Martin" {
		t.Errorf("last name = %q", updated.LastName)
	}
	if updated.Phone == nil || *updated.Phone != "+33 6 12 34 56 78" {
		t.Error("phone not updated")
	}

	if _, err := svc.Update(context.Background(), uuid.New(), &PatientInput{
		FirstName: "A", LastName: "B",
	}); err == nil {
		t.Error("expected error for unknown patient")
	}
}

func TestListAndSearch(t *testing.T) {
	svc := NewService(newMockRepo())

	for _, name := range [][2]string{{"Marie", "Dubois"}, {"Jean", "Martin"}, {"Paul", "Durand"}} {
		if _, err := svc.Create(context.Background(), &PatientInput{FirstName: name[0], LastName: name[1]}); err != nil {
			t.Fatal(err)
		}
	}

	all, total, err := svc.List(context.Background(), "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("list = %d/%d, want 3", len(all), total)
	}

	found, total, err := svc.List(context.Background(), "mar", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("search 'mar' matched %d, want 2 (Marie Dubois, Jean Martin)", total)
	}
	for _, p := range found {
		if !strings.Contains(strings.ToLower(p.FullName()), "mar") {
			t.Errorf("unexpected match %q", p.FullName())
		}
	}
}

func TestDeletePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.Create(context.Background(), &PatientInput{FirstName: "Marie", LastName: "Dubois"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(context.Background(), p.ID); err == nil {
		t.Error("expected error after delete")
	}
}
