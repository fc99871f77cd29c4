package user

import "time"

// User is a staff account. Imports and invoices record the user who created them.
type User struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	BranchID  *int      `db:"branch_id" json:"branch_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
