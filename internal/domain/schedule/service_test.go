package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/platform/auth"
)

type mockRepo struct {
	appointments   map[uuid.UUID]*Appointment
	windows        map[uuid.UUID]*AvailabilityWindow
	closures       map[uuid.UUID]*PracticeClosure
	weeklyClosures map[uuid.UUID]*PracticeWeeklyClosure
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appointments:   make(map[uuid.UUID]*Appointment),
		windows:        make(map[uuid.UUID]*AvailabilityWindow),
		closures:       make(map[uuid.UUID]*PracticeClosure),
		weeklyClosures: make(map[uuid.UUID]*PracticeWeeklyClosure),
	}
}

func (m *mockRepo) CreateAppointment(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) GetAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateAppointment(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return fmt.Errorf("appointment not found")
	}
	a.UpdatedAt = time.Now()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	delete(m.appointments, id)
	return nil
}

func (m *mockRepo) ListAppointments(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListAppointmentsBetween(_ context.Context, from, to time.Time, doctorID *uuid.UUID) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if !Overlaps(a.StartsAt, a.EndsAt, from, to) {
			continue
		}
		if doctorID != nil && (a.DoctorID == nil || *a.DoctorID != *doctorID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockRepo) CountOverlapping(_ context.Context, doctorID uuid.UUID, startsAt, endsAt time.Time, excludeID *uuid.UUID) (int, error) {
	count := 0
	for _, a := range m.appointments {
		if a.DoctorID == nil || *a.DoctorID != doctorID {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if Overlaps(a.StartsAt, a.EndsAt, startsAt, endsAt) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) CreateWindow(_ context.Context, w *AvailabilityWindow) error {
	w.ID = uuid.New()
	m.windows[w.ID] = w
	return nil
}

func (m *mockRepo) UpdateWindow(_ context.Context, w *AvailabilityWindow) error {
	m.windows[w.ID] = w
	return nil
}

func (m *mockRepo) DeleteWindow(_ context.Context, id uuid.UUID) error {
	delete(m.windows, id)
	return nil
}

func (m *mockRepo) ListWindows(_ context.Context, doctorID *uuid.UUID) ([]*AvailabilityWindow, error) {
	var out []*AvailabilityWindow
	for _, w := range m.windows {
		if doctorID != nil && w.DoctorID != *doctorID {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (m *mockRepo) CreateClosure(_ context.Context, cl *PracticeClosure) error {
	cl.ID = uuid.New()
	m.closures[cl.ID] = cl
	return nil
}

func (m *mockRepo) DeleteClosure(_ context.Context, id uuid.UUID) error {
	delete(m.closures, id)
	return nil
}

func (m *mockRepo) ListClosures(_ context.Context) ([]*PracticeClosure, error) {
	var out []*PracticeClosure
	for _, cl := range m.closures {
		out = append(out, cl)
	}
	return out, nil
}

func (m *mockRepo) ListClosuresBetween(_ context.Context, from, to time.Time) ([]*PracticeClosure, error) {
	var out []*PracticeClosure
	for _, cl := range m.closures {
		if Overlaps(cl.StartsAt, cl.EndsAt, from, to) {
			out = append(out, cl)
		}
	}
	return out, nil
}

func (m *mockRepo) CreateWeeklyClosure(_ context.Context, wc *PracticeWeeklyClosure) error {
	wc.ID = uuid.New()
	m.weeklyClosures[wc.ID] = wc
	return nil
}

func (m *mockRepo) UpdateWeeklyClosure(_ context.Context, wc *PracticeWeeklyClosure) error {
	m.weeklyClosures[wc.ID] = wc
	return nil
}

func (m *mockRepo) DeleteWeeklyClosure(_ context.Context, id uuid.UUID) error {
	delete(m.weeklyClosures, id)
	return nil
}

func (m *mockRepo) ListWeeklyClosures(_ context.Context) ([]*PracticeWeeklyClosure, error) {
	var out []*PracticeWeeklyClosure
	for _, wc := range m.weeklyClosures {
		out = append(out, wc)
	}
	return out, nil
}

// -- helpers --

func slot(day, hour, minute int) time.Time {
	// March 2026: the 16th is a Monday.
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.Local)
}

func validInput(doctorID *uuid.UUID) *AppointmentInput {
	return &AppointmentInput{
		Title:     "Checkup",
		StartsAt:  slot(16, 10, 0),
		EndsAt:    slot(16, 11, 0),
		PatientID: uuid.New(),
		DoctorID:  doctorID,
	}
}

func adminCtx() context.Context {
	return context.WithValue(context.Background(), auth.UserRolesKey, []string{auth.RoleAdmin})
}

func receptionCtx() context.Context {
	return context.WithValue(context.Background(), auth.UserRolesKey, []string{auth.RoleReceptionist})
}

// -- tests --

func TestCreateAppointmentDefaults(t *testing.T) {
	svc := NewService(newMockRepo())

	in := validInput(nil)
	appt, warning, err := svc.CreateAppointment(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.ID == uuid.Nil {
		t.Error("expected an assigned ID")
	}
	if appt.Status != StatusConfirmed {
		t.Errorf("status = %q, want default %q", appt.Status, StatusConfirmed)
	}
	if warning != nil {
		t.Errorf("unexpected warning %q", *warning)
	}
}

func TestCreateAppointmentRejectsInvalidStatus(t *testing.T) {
	svc := NewService(newMockRepo())

	in := validInput(nil)
	in.Status = "BOOKED"
	if _, _, err := svc.CreateAppointment(context.Background(), in); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestCreateAppointmentRequiresFields(t *testing.T) {
	svc := NewService(newMockRepo())

	in := validInput(nil)
	in.Title = ""
	if _, _, err := svc.CreateAppointment(context.Background(), in); err == nil {
		t.Error("expected error for missing title")
	}

	in = validInput(nil)
	in.PatientID = uuid.Nil
	if _, _, err := svc.CreateAppointment(context.Background(), in); err == nil {
		t.Error("expected error for missing patient")
	}
}

func TestCreateAppointmentClampsEndTime(t *testing.T) {
	svc := NewService(newMockRepo())

	// Missing end gets the default visit length.
	in := validInput(nil)
	in.EndsAt = time.Time{}
	appt, _, err := svc.CreateAppointment(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := appt.EndsAt.Sub(appt.StartsAt); got != 30*time.Minute {
		t.Errorf("default duration = %v, want 30m", got)
	}

	// An end before the start is stretched, not rejected.
	in = validInput(nil)
	in.EndsAt = in.StartsAt.Add(-time.Hour)
	appt, _, err = svc.CreateAppointment(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := appt.EndsAt.Sub(appt.StartsAt); got != time.Hour {
		t.Errorf("clamped duration = %v, want 1h", got)
	}
}

func TestCreateAppointmentConflict(t *testing.T) {
	svc := NewService(newMockRepo())
	docID := uuid.New()

	if _, _, err := svc.CreateAppointment(context.Background(), validInput(&docID)); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// Overlapping slot for the same doctor is rejected.
	in := validInput(&docID)
	in.StartsAt = slot(16, 10, 30)
	in.EndsAt = slot(16, 11, 30)
	if _, _, err := svc.CreateAppointment(context.Background(), in); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// Same slot, other direction of overlap.
	in = validInput(&docID)
	in.StartsAt = slot(16, 9, 30)
	in.EndsAt = slot(16, 10, 30)
	if _, _, err := svc.CreateAppointment(context.Background(), in); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// Adjacent slot is fine: intervals are half-open.
	in = validInput(&docID)
	in.StartsAt = slot(16, 11, 0)
	in.EndsAt = slot(16, 12, 0)
	if _, _, err := svc.CreateAppointment(context.Background(), in); err != nil {
		t.Errorf("adjacent slot should not conflict: %v", err)
	}

	// A different doctor is never in conflict.
	otherDoc := uuid.New()
	if _, _, err := svc.CreateAppointment(context.Background(), validInput(&otherDoc)); err != nil {
		t.Errorf("other doctor should not conflict: %v", err)
	}

	// Nor is an appointment with no doctor at all.
	if _, _, err := svc.CreateAppointment(context.Background(), validInput(nil)); err != nil {
		t.Errorf("doctorless booking should not conflict: %v", err)
	}
}

func TestCreateAppointmentWarningDoesNotBlock(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	docID := uuid.New()
	repo.windows[uuid.New()] = &AvailabilityWindow{
		ID: uuid.New(), DoctorID: docID, DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 13 * 60,
	}

	in := validInput(&docID)
	in.StartsAt = slot(16, 14, 0) // Monday afternoon, outside the window
	in.EndsAt = slot(16, 15, 0)
	appt, warning, err := svc.CreateAppointment(context.Background(), in)
	if err != nil {
		t.Fatalf("warning must not block the booking: %v", err)
	}
	if warning == nil {
		t.Fatal("expected an outside-hours warning")
	}
	if appt.ID == uuid.Nil {
		t.Error("booking was not persisted")
	}
}

func TestUpdateAppointmentSelfExclusion(t *testing.T) {
	svc := NewService(newMockRepo())
	docID := uuid.New()

	appt, _, err := svc.CreateAppointment(context.Background(), validInput(&docID))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// Shifting within its own original slot must not collide with itself.
	in := validInput(&docID)
	in.StartsAt = slot(16, 10, 15)
	in.EndsAt = slot(16, 11, 15)
	if _, _, err := svc.UpdateAppointment(receptionCtx(), appt.ID, in); err != nil {
		t.Errorf("edit collided with itself: %v", err)
	}
}

func TestUpdateAppointmentSameSlotSkipsConflictCheck(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	docID := uuid.New()

	appt, _, err := svc.CreateAppointment(context.Background(), validInput(&docID))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// Plant a second record occupying the identical slot, simulating data
	// that slipped past the check concurrently. A same-slot edit must still
	// succeed.
	dup := &Appointment{
		Title: "Dup", StartsAt: appt.StartsAt, EndsAt: appt.EndsAt,
		PatientID: uuid.New(), DoctorID: &docID, Status: StatusConfirmed,
	}
	if err := repo.CreateAppointment(context.Background(), dup); err != nil {
		t.Fatal(err)
	}

	in := validInput(&docID)
	in.Title = "Checkup (renamed)"
	in.StartsAt = appt.StartsAt.Add(500 * time.Millisecond)
	in.EndsAt = appt.EndsAt
	updated, _, err := svc.UpdateAppointment(receptionCtx(), appt.ID, in)
	if err != nil {
		t.Fatalf("same-slot edit should skip the conflict check: %v", err)
	}
	if updated.Title != "Checkup (renamed)" {
		t.Errorf("title not updated: %q", updated.Title)
	}

	// Actually moving the appointment re-enables the check.
	in = validInput(&docID)
	in.StartsAt = appt.StartsAt.Add(10 * time.Minute)
	in.EndsAt = appt.EndsAt.Add(10 * time.Minute)
	if _, _, err := svc.UpdateAppointment(receptionCtx(), appt.ID, in); !errors.Is(err, ErrConflict) {
		t.Errorf("moved slot should conflict with the duplicate, got %v", err)
	}
}

func TestUpdateCompletedRequiresAdmin(t *testing.T) {
	svc := NewService(newMockRepo())

	appt, _, err := svc.CreateAppointment(context.Background(), validInput(nil))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if _, err := svc.UpdateStatus(receptionCtx(), appt.ID, StatusCompleted); err != nil {
		t.Fatalf("completing failed: %v", err)
	}

	// Full edit by a receptionist is refused.
	in := validInput(nil)
	in.Status = StatusCompleted
	in.Title = "Amended"
	if _, _, err := svc.UpdateAppointment(receptionCtx(), appt.ID, in); !errors.Is(err, ErrCompletedAdminOnly) {
		t.Errorf("expected ErrCompletedAdminOnly, got %v", err)
	}

	// Status change by a receptionist is refused too.
	if _, err := svc.UpdateStatus(receptionCtx(), appt.ID, StatusConfirmed); !errors.Is(err, ErrCompletedAdminOnly) {
		t.Errorf("expected ErrCompletedAdminOnly, got %v", err)
	}

	// An admin may do both.
	if _, _, err := svc.UpdateAppointment(adminCtx(), appt.ID, in); err != nil {
		t.Errorf("admin edit refused: %v", err)
	}
	if _, err := svc.UpdateStatus(adminCtx(), appt.ID, StatusConfirmed); err != nil {
		t.Errorf("admin status change refused: %v", err)
	}
}

func TestUpdateStatusValidates(t *testing.T) {
	svc := NewService(newMockRepo())

	appt, _, err := svc.CreateAppointment(context.Background(), validInput(nil))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if _, err := svc.UpdateStatus(receptionCtx(), appt.ID, "DONE"); err == nil {
		t.Error("expected error for unknown status")
	}
	updated, err := svc.UpdateStatus(receptionCtx(), appt.ID, StatusInWaiting)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusInWaiting {
		t.Errorf("status = %q", updated.Status)
	}
}

func TestCheckConflictNilDoctor(t *testing.T) {
	svc := NewService(newMockRepo())

	conflict, err := svc.CheckConflict(context.Background(), nil, slot(16, 10, 0), slot(16, 11, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict {
		t.Error("no doctor selected can never conflict")
	}
}

func TestCheckConflictExcludeID(t *testing.T) {
	svc := NewService(newMockRepo())
	docID := uuid.New()

	appt, _, err := svc.CreateAppointment(context.Background(), validInput(&docID))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	conflict, err := svc.CheckConflict(context.Background(), &docID, appt.StartsAt, appt.EndsAt, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !conflict {
		t.Error("expected a conflict without exclusion")
	}

	conflict, err = svc.CheckConflict(context.Background(), &docID, appt.StartsAt, appt.EndsAt, &appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if conflict {
		t.Error("excluding the appointment itself should clear the conflict")
	}
}

func TestWindowValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	docID := uuid.New()

	if _, err := svc.CreateWindow(context.Background(), &WindowInput{
		DoctorID: docID, DayOfWeek: 8, StartMinute: 540, EndMinute: 780,
	}); err == nil {
		t.Error("expected error for weekday out of range")
	}

	if _, err := svc.CreateWindow(context.Background(), &WindowInput{
		DoctorID: docID, DayOfWeek: 1, StartMinute: 780, EndMinute: 540,
	}); err == nil {
		t.Error("expected error for inverted interval")
	}

	w, err := svc.CreateWindow(context.Background(), &WindowInput{
		DoctorID: docID, DayOfWeek: 1, StartMinute: 540, EndMinute: 780,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ID == uuid.Nil {
		t.Error("expected an assigned ID")
	}
}

func TestClosureValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	if _, err := svc.CreateClosure(context.Background(), &ClosureInput{
		Type: "VACATION", StartsAt: slot(16, 0, 0), EndsAt: slot(20, 0, 0),
	}); err == nil {
		t.Error("expected error for unknown closure type")
	}

	if _, err := svc.CreateClosure(context.Background(), &ClosureInput{
		Type: ClosureHoliday, StartsAt: slot(20, 0, 0), EndsAt: slot(16, 0, 0),
	}); err == nil {
		t.Error("expected error for inverted range")
	}

	cl, err := svc.CreateClosure(context.Background(), &ClosureInput{
		Type: ClosureHoliday, StartsAt: slot(16, 0, 0), EndsAt: slot(20, 0, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cl.Type != ClosureHoliday {
		t.Errorf("type = %q", cl.Type)
	}
}

func TestMonthViewAssemblesGrid(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if _, _, err := svc.CreateAppointment(context.Background(), validInput(nil)); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	grid, err := svc.MonthView(context.Background(), 2026, time.March, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid.Days) != 42 {
		t.Fatalf("grid has %d days, want 42", len(grid.Days))
	}
	found := false
	for _, d := range grid.Days {
		if d.Date.Day() == 16 && d.Date.Month() == time.March && len(d.Appointments) == 1 {
			found = true
		}
	}
	if !found {
		t.Error("seeded appointment missing from its grid day")
	}
}

func TestWeekViewAssemblesGrid(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if _, _, err := svc.CreateAppointment(context.Background(), validInput(nil)); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	grid, err := svc.WeekView(context.Background(), slot(16, 0, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grid.Days) != 7 {
		t.Fatalf("grid has %d days, want 7", len(grid.Days))
	}
	if len(grid.Days[0].Appointments) != 1 {
		t.Errorf("Monday should carry the seeded appointment, got %d", len(grid.Days[0].Appointments))
	}
}
