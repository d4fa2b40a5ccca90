package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/platform/auth"
)

// StaffUser is a practice staff account. Authentication itself happens at
// the identity provider; this record carries the roles and on/off switch
// the practice manages locally.
type StaffUser struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Roles     []string  `db:"roles" json:"roles"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

var knownRoles = map[string]bool{
	auth.RoleAdmin:        true,
	auth.RoleDentist:      true,
	auth.RoleAssistant:    true,
	auth.RoleReceptionist: true,
}

// ValidRoles reports whether every entry is a known staff role and the list
// is not empty.
func ValidRoles(roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if !knownRoles[r] {
			return false
		}
	}
	return true
}
