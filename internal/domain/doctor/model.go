package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a practitioner who can be assigned to appointments. The color
// is the hue the calendar uses for this doctor's availability and bookings.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Color     *string   `db:"color" json:"color,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
