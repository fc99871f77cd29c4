package importer

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type Status string

const (
	StatusPending             Status = "pending"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
)

type Type string

const (
	TypeIndividual Type = "individual"
	TypeCorporate  Type = "corporate"
)

func (t Type) Valid() bool {
	return t == TypeIndividual || t == TypeCorporate
}

// MemberImport is one uploaded file and the outcome of importing it.
type MemberImport struct {
	ID                    int                 `db:"id" json:"id"`
	Status                Status              `db:"status" json:"status"`
	Type                  Type                `db:"type" json:"type"`
	BranchID              int                 `db:"branch_id" json:"branch_id"`
	CreatedBy             int                 `db:"created_by" json:"created_by"`
	FilePath              string              `db:"file_path" json:"-"`
	PlanID                *int                `db:"plan_id" json:"plan_id,omitempty"`
	CompanySubscriptionID *int                `db:"company_subscription_id" json:"company_subscription_id,omitempty"`
	Statistics            types.NullJSONText  `db:"statistics" json:"statistics"`
	ErrorMessage          *string             `db:"error_message" json:"error_message,omitempty"`
	CreatedAt             time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time           `db:"updated_at" json:"updated_at"`
}

// MemberImportLog records one rejected row with its raw values.
type MemberImportLog struct {
	ID             int            `db:"id" json:"id"`
	MemberImportID int            `db:"member_import_id" json:"member_import_id"`
	RowNumber      int            `db:"row_number" json:"row_number"`
	RowData        types.JSONText `db:"row_data" json:"row_data"`
	ErrorMessage   string         `db:"error_message" json:"error_message"`
	IsResolved     bool           `db:"is_resolved" json:"is_resolved"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

type Statistics struct {
	SuccessCount   int `json:"success_count"`
	FailedCount    int `json:"failed_count"`
	TotalProcessed int `json:"total_processed"`
}

// FinalStatus is the job status implied by the row counts.
func (s Statistics) FinalStatus() Status {
	if s.FailedCount > 0 {
		return StatusCompletedWithErrors
	}
	return StatusCompleted
}

// RowError describes why a row was rejected. It never escapes a batch.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *RowError) Error() string {
	return e.Message
}

type RowResult struct {
	Row            int       `json:"row"`
	MemberID       int       `json:"member_id,omitempty"`
	SubscriptionID int       `json:"subscription_id,omitempty"`
	Err            *RowError `json:"error,omitempty"`
}

func (r RowResult) OK() bool {
	return r.Err == nil
}

// FailedRow is a rejected row shaped for the failed-rows export.
type FailedRow struct {
	Reference           string
	Name                string
	Gender              string
	NationalID          string
	DateOfBirth         string
	Phone               string
	Email               string
	Address             string
	ErrorMessage        string
	MembershipStartDate string
}
