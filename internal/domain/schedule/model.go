package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Transitions are unconstrained except that only an
// admin may modify an appointment that is already COMPLETED.
const (
	StatusToConfirm  = "TO_CONFIRM"
	StatusConfirmed  = "CONFIRMED"
	StatusInWaiting  = "IN_WAITING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
	StatusNoShow     = "NO_SHOW"
)

var validStatuses = map[string]bool{
	StatusToConfirm:  true,
	StatusConfirmed:  true,
	StatusInWaiting:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusNoShow:     true,
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

// Appointment maps to the appointment table. All times are practice-local
// wall-clock values; no timezone conversion is performed anywhere in the
// scheduling code.
type Appointment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	ServiceType *string    `db:"service_type" json:"service_type,omitempty"`
	StartsAt    time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time  `db:"ends_at" json:"ends_at"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID    *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Status      string     `db:"status" json:"status"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AvailabilityWindow is a recurring weekly open-hours interval for one
// doctor: a weekday (1=Monday..7=Sunday) plus start/end minute-of-day.
// Windows of the same doctor and day may overlap; no invariant is enforced.
type AvailabilityWindow struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartMinute int       `db:"start_minute" json:"start_minute"`
	EndMinute   int       `db:"end_minute" json:"end_minute"`
	Color       *string   `db:"color" json:"color,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Closure types.
const (
	ClosureHoliday = "HOLIDAY"
	ClosureTimeOff = "TIME_OFF"
)

// PracticeClosure is a one-off absolute date range during which the whole
// practice is unavailable.
type PracticeClosure struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Title     *string   `db:"title" json:"title,omitempty"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PracticeWeeklyClosure is a recurring "closed every <weekday>" rule.
type PracticeWeeklyClosure struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	Title     *string   `db:"title" json:"title,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
