package recall

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
	"github.com/dentora/dentora/internal/platform/notification"
)

// PatientLookup resolves patient contact details for recall notifications.
// *patient.Service satisfies it.
type PatientLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	patients PatientLookup
	notifier *notification.Manager
	validate *validator.Validate
}

func NewService(repo Repository, patients PatientLookup, notifier *notification.Manager) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		notifier: notifier,
		validate: validator.New(),
	}
}

type RecallInput struct {
	PatientID uuid.UUID `json:"patient_id" validate:"required"`
	Type      string    `json:"type" validate:"required"`
	DueDate   time.Time `json:"due_date" validate:"required"`
	Notes     *string   `json:"notes"`
}

func (s *Service) Create(ctx context.Context, in *RecallInput) (*Recall, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if !ValidType(in.Type) {
		return nil, fmt.Errorf("invalid recall type: %s", in.Type)
	}
	if _, err := s.patients.Get(ctx, in.PatientID); err != nil {
		return nil, fmt.Errorf("unknown patient: %w", err)
	}
	rc := &Recall{
		PatientID: in.PatientID,
		Type:      in.Type,
		Status:    StatusPending,
		DueDate:   in.DueDate,
		Notes:     in.Notes,
	}
	if err := s.repo.Create(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Recall, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Recall, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid recall status: %s", status)
	}
	rc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rc.Status = status
	if err := s.repo.Update(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Recall, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Recall, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) ListDue(ctx context.Context, by time.Time) ([]*Recall, error) {
	return s.repo.ListDue(ctx, by)
}

// Notify sends the recall message to the patient and marks the recall
// NOTIFIED. Patients with an email get the email template; patients with
// only a phone number get the SMS variant.
func (s *Service) Notify(ctx context.Context, id uuid.UUID) (*Recall, error) {
	rc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rc.Status != StatusPending {
		return nil, fmt.Errorf("recall is %s, only pending recalls can be notified", rc.Status)
	}

	p, err := s.patients.Get(ctx, rc.PatientID)
	if err != nil {
		return nil, err
	}

	data := map[string]string{
		"patient_name": p.FullName(),
		"recall_type":  label(rc.Type),
		"due_date":     rc.DueDate.Format("2006-01-02"),
	}

	switch {
	case p.Email != nil && *p.Email != "":
		_, err = s.notifier.SendFromTemplate(ctx, "recall-due", data, *p.Email)
	case p.Phone != nil && *p.Phone != "":
		_, err = s.notifier.SendFromTemplate(ctx, "recall-due-sms", data, *p.Phone)
	default:
		return nil, fmt.Errorf("patient has no email or phone on file")
	}
	if err != nil {
		return nil, err
	}

	rc.Status = StatusNotified
	if err := s.repo.Update(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

// NotifyDue notifies every pending recall due by the given day. Failures
// are counted but do not stop the sweep; a patient without contact details
// must not block the rest of the list.
func (s *Service) NotifyDue(ctx context.Context, by time.Time) (notified, failed int, err error) {
	due, err := s.repo.ListDue(ctx, by)
	if err != nil {
		return 0, 0, err
	}
	for _, rc := range due {
		if _, err := s.Notify(ctx, rc.ID); err != nil {
			failed++
			continue
		}
		notified++
	}
	return notified, failed, nil
}
