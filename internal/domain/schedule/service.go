package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/platform/auth"
)

var (
	// ErrConflict is returned when the selected doctor already has an
	// appointment overlapping the requested slot.
	ErrConflict = errors.New("the doctor already has an appointment in this time slot")

	// ErrCompletedAdminOnly is returned when a non-admin tries to modify an
	// appointment that is already completed.
	ErrCompletedAdminOnly = errors.New("only an admin may modify a completed appointment")
)

// Fallback durations applied when a booking arrives without a usable end
// time: a missing end gets the default visit length, an end at or before the
// start gets a full hour.
const (
	defaultVisitDuration = 30 * time.Minute
	clampedVisitDuration = 60 * time.Minute
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// AppointmentInput is the payload for creating or editing an appointment.
type AppointmentInput struct {
	Title       string     `json:"title" validate:"required"`
	ServiceType *string    `json:"service_type"`
	StartsAt    time.Time  `json:"starts_at" validate:"required"`
	EndsAt      time.Time  `json:"ends_at"`
	PatientID   uuid.UUID  `json:"patient_id" validate:"required"`
	DoctorID    *uuid.UUID `json:"doctor_id"`
	Status      string     `json:"status"`
	Notes       *string    `json:"notes"`
}

// normalize applies the end-time clamp and the status default. An end at or
// before the start is not rejected; the visit is stretched instead so the
// front desk never loses a booking to a slip of the clock widget.
func (in *AppointmentInput) normalize() {
	if in.EndsAt.IsZero() {
		in.EndsAt = in.StartsAt.Add(defaultVisitDuration)
	} else if !in.EndsAt.After(in.StartsAt) {
		in.EndsAt = in.StartsAt.Add(clampedVisitDuration)
	}
	if in.Status == "" {
		in.Status = StatusConfirmed
	}
}

// CreateAppointment validates and persists a new appointment. It returns the
// stored appointment plus an optional advisory scheduling warning; the
// warning never blocks the booking. A doctor double-booking, by contrast, is
// rejected with ErrConflict.
//
// The conflict check and the insert are not wrapped in one transaction: two
// concurrent bookings for the same slot can both pass the check and both
// persist. Accepted risk at per-clinic booking volumes.
func (s *Service) CreateAppointment(ctx context.Context, in *AppointmentInput) (*Appointment, *string, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, nil, err
	}
	in.normalize()
	if !ValidStatus(in.Status) {
		return nil, nil, fmt.Errorf("invalid status: %s", in.Status)
	}

	conflict, err := s.CheckConflict(ctx, in.DoctorID, in.StartsAt, in.EndsAt, nil)
	if err != nil {
		return nil, nil, err
	}
	if conflict {
		return nil, nil, ErrConflict
	}

	warning, err := s.computeWarning(ctx, in.DoctorID, in.StartsAt, in.EndsAt)
	if err != nil {
		return nil, nil, err
	}

	appt := &Appointment{
		Title:       in.Title,
		ServiceType: in.ServiceType,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		Status:      in.Status,
		Notes:       in.Notes,
	}
	if err := s.repo.CreateAppointment(ctx, appt); err != nil {
		return nil, nil, err
	}
	return appt, warning, nil
}

// UpdateAppointment applies a full edit. Editing a COMPLETED appointment
// requires the admin role. Moving an appointment to (effectively) the same
// slot it already occupies skips the conflict check entirely.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, in *AppointmentInput) (*Appointment, *string, error) {
	existing, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if existing.Status == StatusCompleted && !auth.IsAdmin(ctx) {
		return nil, nil, ErrCompletedAdminOnly
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, nil, err
	}
	in.normalize()
	if !ValidStatus(in.Status) {
		return nil, nil, fmt.Errorf("invalid status: %s", in.Status)
	}

	if !sameSlot(existing, in) {
		conflict, err := s.CheckConflict(ctx, in.DoctorID, in.StartsAt, in.EndsAt, &id)
		if err != nil {
			return nil, nil, err
		}
		if conflict {
			return nil, nil, ErrConflict
		}
	}

	warning, err := s.computeWarning(ctx, in.DoctorID, in.StartsAt, in.EndsAt)
	if err != nil {
		return nil, nil, err
	}

	existing.Title = in.Title
	existing.ServiceType = in.ServiceType
	existing.StartsAt = in.StartsAt
	existing.EndsAt = in.EndsAt
	existing.PatientID = in.PatientID
	existing.DoctorID = in.DoctorID
	existing.Status = in.Status
	existing.Notes = in.Notes

	if err := s.repo.UpdateAppointment(ctx, existing); err != nil {
		return nil, nil, err
	}
	return existing, warning, nil
}

// sameSlot reports whether the edit keeps the appointment's (doctor, start,
// end) triple within one second of its current values.
func sameSlot(existing *Appointment, in *AppointmentInput) bool {
	if (existing.DoctorID == nil) != (in.DoctorID == nil) {
		return false
	}
	if existing.DoctorID != nil && *existing.DoctorID != *in.DoctorID {
		return false
	}
	return absDuration(in.StartsAt.Sub(existing.StartsAt)) <= time.Second &&
		absDuration(in.EndsAt.Sub(existing.EndsAt)) <= time.Second
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// UpdateStatus changes just the status of an appointment. The COMPLETED
// guard applies here too.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == StatusCompleted && !auth.IsAdmin(ctx) {
		return nil, ErrCompletedAdminOnly
	}
	appt.Status = status
	if err := s.repo.UpdateAppointment(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAppointment(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListAppointments(ctx, limit, offset)
}

func (s *Service) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListAppointmentsByPatient(ctx, patientID, limit, offset)
}

// CheckConflict reports whether the doctor already has an appointment
// overlapping [startsAt, endsAt). No doctor means no conflict is possible.
// excludeID omits the appointment being edited from the count.
func (s *Service) CheckConflict(ctx context.Context, doctorID *uuid.UUID, startsAt, endsAt time.Time, excludeID *uuid.UUID) (bool, error) {
	if doctorID == nil {
		return false, nil
	}
	count, err := s.repo.CountOverlapping(ctx, *doctorID, startsAt, endsAt, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ComputeWarning exposes the advisory warning for a proposed slot, loading
// the availability and closure collections for the caller.
func (s *Service) ComputeWarning(ctx context.Context, doctorID *uuid.UUID, startsAt, endsAt time.Time) (*string, error) {
	return s.computeWarning(ctx, doctorID, startsAt, endsAt)
}

func (s *Service) computeWarning(ctx context.Context, doctorID *uuid.UUID, startsAt, endsAt time.Time) (*string, error) {
	windows, err := s.repo.ListWindows(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	closures, err := s.repo.ListClosuresBetween(ctx, startsAt, endsAt)
	if err != nil {
		return nil, err
	}
	weekly, err := s.repo.ListWeeklyClosures(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeSchedulingWarning(doctorID, startsAt, endsAt, windows, closures, weekly), nil
}

// MonthView builds the month grid for the given year/month, optionally
// restricted to a single doctor.
func (s *Service) MonthView(ctx context.Context, year int, month time.Month, doctorID *uuid.UUID) (*MonthGrid, error) {
	start := GridStart(year, month)
	end := start.AddDate(0, 0, 42)

	appts, err := s.repo.ListAppointmentsBetween(ctx, start, end, doctorID)
	if err != nil {
		return nil, err
	}
	windows, err := s.repo.ListWindows(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	closures, err := s.repo.ListClosuresBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	weekly, err := s.repo.ListWeeklyClosures(ctx)
	if err != nil {
		return nil, err
	}

	return BuildMonthGrid(year, month, time.Now(), appts, windows, closures, weekly, doctorID), nil
}

// WeekView builds the week grid for the Monday-anchored week starting at
// weekStart, optionally restricted to a single doctor.
func (s *Service) WeekView(ctx context.Context, weekStart time.Time, doctorID *uuid.UUID) (*WeekGrid, error) {
	weekStart = DateOf(weekStart)
	end := weekStart.AddDate(0, 0, 7)

	appts, err := s.repo.ListAppointmentsBetween(ctx, weekStart, end, doctorID)
	if err != nil {
		return nil, err
	}
	windows, err := s.repo.ListWindows(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	closures, err := s.repo.ListClosuresBetween(ctx, weekStart, end)
	if err != nil {
		return nil, err
	}
	weekly, err := s.repo.ListWeeklyClosures(ctx)
	if err != nil {
		return nil, err
	}

	return BuildWeekGrid(weekStart, appts, windows, closures, weekly, doctorID), nil
}

// WindowInput is the payload for creating or editing an availability window.
type WindowInput struct {
	DoctorID    uuid.UUID `json:"doctor_id" validate:"required"`
	DayOfWeek   int       `json:"day_of_week" validate:"required,min=1,max=7"`
	StartMinute int       `json:"start_minute" validate:"min=0,max=1439"`
	EndMinute   int       `json:"end_minute" validate:"min=0,max=1439"`
	Color       *string   `json:"color"`
}

func (s *Service) CreateWindow(ctx context.Context, in *WindowInput) (*AvailabilityWindow, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.EndMinute <= in.StartMinute {
		return nil, fmt.Errorf("end_minute must be after start_minute")
	}
	w := &AvailabilityWindow{
		DoctorID:    in.DoctorID,
		DayOfWeek:   in.DayOfWeek,
		StartMinute: in.StartMinute,
		EndMinute:   in.EndMinute,
		Color:       in.Color,
	}
	if err := s.repo.CreateWindow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) UpdateWindow(ctx context.Context, id uuid.UUID, in *WindowInput) (*AvailabilityWindow, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.EndMinute <= in.StartMinute {
		return nil, fmt.Errorf("end_minute must be after start_minute")
	}
	w := &AvailabilityWindow{
		ID:          id,
		DoctorID:    in.DoctorID,
		DayOfWeek:   in.DayOfWeek,
		StartMinute: in.StartMinute,
		EndMinute:   in.EndMinute,
		Color:       in.Color,
	}
	if err := s.repo.UpdateWindow(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWindow(ctx, id)
}

func (s *Service) ListWindows(ctx context.Context, doctorID *uuid.UUID) ([]*AvailabilityWindow, error) {
	return s.repo.ListWindows(ctx, doctorID)
}

// ClosureInput is the payload for a one-off practice closure.
type ClosureInput struct {
	Type     string    `json:"type" validate:"required,oneof=HOLIDAY TIME_OFF"`
	Title    *string   `json:"title"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	EndsAt   time.Time `json:"ends_at" validate:"required"`
}

func (s *Service) CreateClosure(ctx context.Context, in *ClosureInput) (*PracticeClosure, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, fmt.Errorf("ends_at must be after starts_at")
	}
	cl := &PracticeClosure{
		Type:     in.Type,
		Title:    in.Title,
		StartsAt: in.StartsAt,
		EndsAt:   in.EndsAt,
	}
	if err := s.repo.CreateClosure(ctx, cl); err != nil {
		return nil, err
	}
	return cl, nil
}

func (s *Service) DeleteClosure(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteClosure(ctx, id)
}

func (s *Service) ListClosures(ctx context.Context) ([]*PracticeClosure, error) {
	return s.repo.ListClosures(ctx)
}

// WeeklyClosureInput is the payload for a recurring weekly closure.
type WeeklyClosureInput struct {
	DayOfWeek int     `json:"day_of_week" validate:"required,min=1,max=7"`
	Title     *string `json:"title"`
	IsActive  bool    `json:"is_active"`
}

func (s *Service) CreateWeeklyClosure(ctx context.Context, in *WeeklyClosureInput) (*PracticeWeeklyClosure, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	wc := &PracticeWeeklyClosure{
		DayOfWeek: in.DayOfWeek,
		Title:     in.Title,
		IsActive:  in.IsActive,
	}
	if err := s.repo.CreateWeeklyClosure(ctx, wc); err != nil {
		return nil, err
	}
	return wc, nil
}

func (s *Service) UpdateWeeklyClosure(ctx context.Context, id uuid.UUID, in *WeeklyClosureInput) (*PracticeWeeklyClosure, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	wc := &PracticeWeeklyClosure{
		ID:        id,
		DayOfWeek: in.DayOfWeek,
		Title:     in.Title,
		IsActive:  in.IsActive,
	}
	if err := s.repo.UpdateWeeklyClosure(ctx, wc); err != nil {
		return nil, err
	}
	return wc, nil
}

func (s *Service) DeleteWeeklyClosure(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWeeklyClosure(ctx, id)
}

func (s *Service) ListWeeklyClosures(ctx context.Context) ([]*PracticeWeeklyClosure, error) {
	return s.repo.ListWeeklyClosures(ctx)
}
