package member

import (
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Member struct {
	ID               int        `db:"id" json:"id"`
	Reference        string     `db:"reference" json:"reference"`
	FirstName        string     `db:"first_name" json:"first_name"`
	LastName         string     `db:"last_name" json:"last_name"`
	Gender           Gender     `db:"gender" json:"gender"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	NationalIDNumber *string    `db:"national_id_number" json:"national_id_number,omitempty"`
	Email            *string    `db:"email" json:"email,omitempty"`
	PhoneCode        *string    `db:"phone_code" json:"phone_code,omitempty"`
	PhoneNumber      *string    `db:"phone_number" json:"phone_number,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	BranchID         int        `db:"branch_id" json:"branch_id"`
	CreatedBy        int        `db:"created_by" json:"created_by"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// NormalizeGender maps m/f spellings onto the stored enum. Anything else,
// including blank, becomes other.
func NormalizeGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderOther
	}
}

// SplitName takes the first whitespace-separated token as the first name and
// joins the rest as the last name.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
