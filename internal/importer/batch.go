package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fitnesspoint/internal/branch"
	"fitnesspoint/internal/company"
	"fitnesspoint/internal/db"
	"fitnesspoint/internal/logger"
	"fitnesspoint/internal/member"
	"fitnesspoint/internal/metrics"
	"fitnesspoint/internal/plan"
	"fitnesspoint/internal/subscription"
	"fitnesspoint/internal/user"

	"github.com/jmoiron/sqlx/types"
)

var (
	ErrMissingPlan                = errors.New("individual import requires a plan")
	ErrMissingCompanySubscription = errors.New("corporate import requires a company subscription")
	ErrInvalidType                = errors.New("invalid import type")
)

type BranchFinder interface {
	GetByID(ctx context.Context, id int) (*branch.Branch, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int) (*user.User, error)
}

type PlanFinder interface {
	GetByID(ctx context.Context, id int) (*plan.Plan, error)
}

type CompanyStore interface {
	GetSubscription(ctx context.Context, id int) (*company.Subscription, error)
	AttachMember(ctx context.Context, q db.DBTX, companySubscriptionID, memberID, createdBy int) (*company.SubscriptionMember, error)
}

type MemberStore interface {
	existenceChecker
	Create(ctx context.Context, q db.DBTX, m *member.Member) error
}

type SubscriptionCreator interface {
	Create(ctx context.Context, q db.DBTX, sub *subscription.MemberSubscription) error
}

type LogWriter interface {
	CreateLog(ctx context.Context, entry *MemberImportLog) error
}

type PipelineDeps struct {
	Branches      BranchFinder
	Users         UserFinder
	Plans         PlanFinder
	Companies     CompanyStore
	Members       MemberStore
	Subscriptions SubscriptionCreator
	Logs          LogWriter
	Tx            db.TxRunner
}

// Pipeline turns rows into members. It holds no per-import state; each job
// gets its own Batch.
type Pipeline struct {
	branches  BranchFinder
	users     UserFinder
	plans     PlanFinder
	companies CompanyStore
	members   MemberStore
	subs      SubscriptionCreator
	logs      LogWriter
	tx        db.TxRunner
	validator *rowValidator
	now       func() time.Time
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		branches:  deps.Branches,
		users:     deps.Users,
		plans:     deps.Plans,
		companies: deps.Companies,
		members:   deps.Members,
		subs:      deps.Subscriptions,
		logs:      deps.Logs,
		tx:        deps.Tx,
		validator: newRowValidator(deps.Members),
		now:       time.Now,
	}
}

// NewBatch resolves the job's branch and creator. Any error here is fatal for
// the whole import.
func (p *Pipeline) NewBatch(ctx context.Context, job *MemberImport) (*Batch, error) {
	switch job.Type {
	case TypeIndividual:
		if job.PlanID == nil {
			return nil, ErrMissingPlan
		}
	case TypeCorporate:
		if job.CompanySubscriptionID == nil {
			return nil, ErrMissingCompanySubscription
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, job.Type)
	}

	b, err := p.branches.GetByID(ctx, job.BranchID)
	if err != nil {
		return nil, fmt.Errorf("branch %d: %w", job.BranchID, err)
	}
	u, err := p.users.FindByID(ctx, job.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", job.CreatedBy, err)
	}

	return &Batch{p: p, job: job, branch: b, creator: u}, nil
}

type Batch struct {
	p       *Pipeline
	job     *MemberImport
	branch  *branch.Branch
	creator *user.User

	plan                *plan.Plan
	companySubscription *company.Subscription

	stats  Statistics
	failed []FailedRow
}

// Collection processes rows in order and returns one result per non-blank
// row. Rows are numbered from 2 so the header is row 1.
func (b *Batch) Collection(ctx context.Context, rows []Row) []RowResult {
	results := make([]RowResult, 0, len(rows))
	for i, row := range rows {
		if ctx.Err() != nil {
			return results
		}
		if row.Blank() {
			metrics.RecordImportRow(string(b.job.Type), "skipped")
			continue
		}

		rowNumber := i + 2
		res := b.processRow(ctx, rowNumber, row)
		b.stats.TotalProcessed++
		if res.OK() {
			b.stats.SuccessCount++
			metrics.RecordImportRow(string(b.job.Type), "success")
		} else {
			b.stats.FailedCount++
			metrics.RecordImportRow(string(b.job.Type), "failed")
			b.recordFailure(ctx, row, res.Err)
		}
		results = append(results, res)
	}
	return results
}

func (b *Batch) Statistics() Statistics {
	return b.stats
}

func (b *Batch) FailedRows() []FailedRow {
	return b.failed
}

func (b *Batch) recordFailure(ctx context.Context, row Row, rowErr *RowError) {
	logger.Debug("import row rejected",
		"import_id", b.job.ID,
		"row", rowErr.Row,
		"field", rowErr.Field,
		"error", rowErr.Message,
	)

	fr := FailedRow{
		Reference:    row.Get(ColReference),
		Name:         row.Get(ColName),
		Gender:       row.Get(ColGender),
		NationalID:   row.Get(ColNationalID),
		DateOfBirth:  row.Get(ColDateOfBirth),
		Phone:        row.Get(ColPhone),
		Email:        row.Get(ColEmail),
		Address:      row.Get(ColAddress),
		ErrorMessage: rowErr.Message,
	}
	if b.job.Type == TypeIndividual {
		fr.MembershipStartDate = row.Get(ColMembershipStartDate)
	}
	b.failed = append(b.failed, fr)

	entry := &MemberImportLog{
		MemberImportID: b.job.ID,
		RowNumber:      rowErr.Row,
		RowData:        types.JSONText(row.JSON()),
		ErrorMessage:   rowErr.Message,
	}
	if err := b.p.logs.CreateLog(ctx, entry); err != nil {
		logger.WithError(err).Error("failed to write import log", "import_id", b.job.ID, "row", rowErr.Row)
	}
}

func (b *Batch) processRow(ctx context.Context, rowNumber int, row Row) RowResult {
	in := newMemberRow(row)

	errs, err := b.p.validator.Check(ctx, in, b.job.Type)
	if err != nil {
		return failure(rowNumber, "", err.Error())
	}
	if len(errs) > 0 {
		return RowResult{Row: rowNumber, Err: rowError(rowNumber, errs)}
	}

	now := b.p.now()
	m, err := b.buildMember(ctx, in, now)
	if err != nil {
		return failure(rowNumber, ColReference, err.Error())
	}

	var sub *subscription.MemberSubscription
	switch b.job.Type {
	case TypeIndividual:
		pl, err := b.resolvePlan(ctx)
		if err != nil {
			return failure(rowNumber, "", err.Error())
		}
		start := now
		if t, ok := ParseDate(in.MembershipStartDate); ok {
			start = t
		}
		end, err := pl.EndDate(start)
		if err != nil {
			return failure(rowNumber, "", fmt.Sprintf("plan %d: %v", pl.ID, err))
		}
		sub = &subscription.MemberSubscription{
			PlanID:    pl.ID,
			StartDate: start,
			EndDate:   &end,
			Status:    subscription.StatusPending,
			BranchID:  b.branch.ID,
			CreatedBy: b.creator.ID,
		}
	case TypeCorporate:
		if _, err := b.resolveCompanySubscription(ctx); err != nil {
			return failure(rowNumber, "", err.Error())
		}
	}

	err = b.p.tx.InTx(ctx, func(q db.DBTX) error {
		if err := b.p.members.Create(ctx, q, m); err != nil {
			return err
		}
		if sub != nil {
			sub.MemberID = m.ID
			return b.p.subs.Create(ctx, q, sub)
		}
		_, err := b.p.companies.AttachMember(ctx, q, *b.job.CompanySubscriptionID, m.ID, b.creator.ID)
		return err
	})
	if err != nil {
		if constraint, ok := db.UniqueViolation(err); ok {
			if col, known := constraintColumns[constraint]; known {
				return failure(rowNumber, col, takenMessage(col))
			}
		}
		return failure(rowNumber, "", err.Error())
	}

	res := RowResult{Row: rowNumber, MemberID: m.ID}
	if sub != nil {
		res.SubscriptionID = sub.ID
	}
	return res
}

func failure(row int, field, message string) RowResult {
	return RowResult{Row: row, Err: &RowError{Row: row, Field: field, Message: message}}
}

func (b *Batch) buildMember(ctx context.Context, in memberRow, now time.Time) (*member.Member, error) {
	ref := in.Reference
	if ref == "" {
		generated, err := member.GenerateReference(ctx, now, b.p.members.ReferenceExists)
		if err != nil {
			return nil, err
		}
		ref = generated
	}

	first, last := member.SplitName(in.Name)
	m := &member.Member{
		Reference: ref,
		FirstName: first,
		LastName:  last,
		Gender:    member.NormalizeGender(in.Gender),
		BranchID:  b.branch.ID,
		CreatedBy: b.creator.ID,
	}
	if t, ok := ParseDate(in.DateOfBirth); ok {
		m.DateOfBirth = &t
	}
	if in.NationalID != "" {
		m.NationalIDNumber = &in.NationalID
	}
	if in.Email != "" {
		email := strings.ToLower(in.Email)
		m.Email = &email
	}
	if in.Address != "" {
		m.Address = &in.Address
	}
	if in.Phone != "" {
		phone := member.ParsePhone(in.Phone)
		m.PhoneCode = phone.Code
		if phone.Number != "" {
			m.PhoneNumber = &phone.Number
		}
	}
	return m, nil
}

func (b *Batch) resolvePlan(ctx context.Context) (*plan.Plan, error) {
	if b.plan != nil {
		return b.plan, nil
	}
	p, err := b.p.plans.GetByID(ctx, *b.job.PlanID)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", *b.job.PlanID, err)
	}
	b.plan = p
	return p, nil
}

func (b *Batch) resolveCompanySubscription(ctx context.Context) (*company.Subscription, error) {
	if b.companySubscription != nil {
		return b.companySubscription, nil
	}
	cs, err := b.p.companies.GetSubscription(ctx, *b.job.CompanySubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("company subscription %d: %w", *b.job.CompanySubscriptionID, err)
	}
	b.companySubscription = cs
	return cs, nil
}
