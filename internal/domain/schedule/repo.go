package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Appointments
	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateAppointment(ctx context.Context, a *Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListAppointmentsBetween(ctx context.Context, from, to time.Time, doctorID *uuid.UUID) ([]*Appointment, error)
	CountOverlapping(ctx context.Context, doctorID uuid.UUID, startsAt, endsAt time.Time, excludeID *uuid.UUID) (int, error)

	// Availability windows
	CreateWindow(ctx context.Context, w *AvailabilityWindow) error
	UpdateWindow(ctx context.Context, w *AvailabilityWindow) error
	DeleteWindow(ctx context.Context, id uuid.UUID) error
	ListWindows(ctx context.Context, doctorID *uuid.UUID) ([]*AvailabilityWindow, error)

	// One-off practice closures
	CreateClosure(ctx context.Context, cl *PracticeClosure) error
	DeleteClosure(ctx context.Context, id uuid.UUID) error
	ListClosures(ctx context.Context) ([]*PracticeClosure, error)
	ListClosuresBetween(ctx context.Context, from, to time.Time) ([]*PracticeClosure, error)

	// Weekly closures
	CreateWeeklyClosure(ctx context.Context, wc *PracticeWeeklyClosure) error
	UpdateWeeklyClosure(ctx context.Context, wc *PracticeWeeklyClosure) error
	DeleteWeeklyClosure(ctx context.Context, id uuid.UUID) error
	ListWeeklyClosures(ctx context.Context) ([]*PracticeWeeklyClosure, error)
}
