package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the practice's view of a person in the chair: identity,
// contact details and free-form clinical notes. Medical history lives with
// the treatments, not here.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Sex       *string    `db:"sex" json:"sex,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Address   *string    `db:"address" json:"address,omitempty"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName renders "First Last" for notifications and lists.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
