package recall

import (
	"time"

	"github.com/google/uuid"
)

// Recall types.
const (
	TypeCheckup           = "CHECKUP"
	TypeCleaning          = "CLEANING"
	TypeTreatmentFollowUp = "TREATMENT_FOLLOW_UP"
)

var validTypes = map[string]bool{
	TypeCheckup:           true,
	TypeCleaning:          true,
	TypeTreatmentFollowUp: true,
}

// ValidType reports whether s is a known recall type.
func ValidType(s string) bool {
	return validTypes[s]
}

// Recall statuses. PENDING recalls show up on the due list; NOTIFIED means
// the patient has been contacted and the ball is in their court.
const (
	StatusPending   = "PENDING"
	StatusNotified  = "NOTIFIED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusNotified:  true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// ValidStatus reports whether s is a known recall status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

// Recall is a reminder that a patient is due back for periodic care.
type Recall struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Type      string    `db:"type" json:"type"`
	Status    string    `db:"status" json:"status"`
	DueDate   time.Time `db:"due_date" json:"due_date"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// label renders the type for patient-facing messages.
func label(recallType string) string {
	switch recallType {
	case TypeCheckup:
		return "regular check-up"
	case TypeCleaning:
		return "cleaning"
	case TypeTreatmentFollowUp:
		return "treatment follow-up"
	}
	return "visit"
}
