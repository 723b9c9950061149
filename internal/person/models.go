package person

import (
	"time"

	"github.com/mehmetcc/ppdb/internal/role"
	"github.com/mehmetcc/ppdb/pkg/id"
)

type Gender string

const (
	GenderMale   Gender = "L"
	GenderFemale Gender = "P"
)

// Person is anyone who can hold a session: an applicant (calon siswa) or a
// staff member. NISN is only set for applicants.
type Person struct {
	ID        int64       `json:"-" db:"id"`
	PublicID  id.PublicID `json:"public_id" db:"public_id"`
	Email     string      `json:"email" db:"email"`
	Name      string      `json:"name" db:"name"`
	Gender    Gender      `json:"gender,omitempty" db:"gender"`
	NISN      string      `json:"nisn,omitempty" db:"nisn"`
	Password  string      `json:"-" db:"password"`
	Role      role.Role   `json:"role" db:"role"`
	IsActive  bool        `json:"is_active" db:"is_active"`
	IsDeleted bool        `json:"-" db:"is_deleted"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}
