package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitnesspoint/internal/billing"
	"fitnesspoint/internal/db"
	"fitnesspoint/internal/logger"
	"fitnesspoint/internal/member"
	"fitnesspoint/internal/metrics"
	"fitnesspoint/internal/plan"

	"github.com/shopspring/decimal"
)

var (
	ErrCannotRenew          = errors.New("subscription cannot be renewed")
	ErrCannotUpgrade        = errors.New("subscription cannot be upgraded to this plan")
	ErrBillingConfigMissing = errors.New("rate type and tax rate are required")
)

type Store interface {
	GetByID(ctx context.Context, id int) (*MemberSubscription, error)
	ListByMember(ctx context.Context, memberID int) ([]MemberSubscription, error)
	Create(ctx context.Context, q db.DBTX, sub *MemberSubscription) error
	ApplyRenewal(ctx context.Context, q db.DBTX, sub *MemberSubscription) error
	Cancel(ctx context.Context, q db.DBTX, id int, note string) error
}

type PlanFinder interface {
	GetByID(ctx context.Context, id int) (*plan.Plan, error)
	ListActive(ctx context.Context) ([]plan.Plan, error)
}

type BillingStore interface {
	GetRateType(ctx context.Context, id int) (*billing.RateType, error)
	GetTaxRate(ctx context.Context, id int) (*billing.TaxRate, error)
	GetDiscountType(ctx context.Context, id int) (*billing.DiscountType, error)
	CreateInvoice(ctx context.Context, q db.DBTX, inv *billing.Invoice) error
	MarkSent(ctx context.Context, invoiceID int) error
	ListBySubscription(ctx context.Context, subscriptionID int) ([]billing.Invoice, error)
}

type MemberFinder interface {
	GetByID(ctx context.Context, id int) (*member.Member, error)
}

type InvoiceNotifier interface {
	SendInvoice(ctx context.Context, to, name string, inv *billing.Invoice) error
}

// BillingDefaults fill in billing options a caller leaves unset.
type BillingDefaults struct {
	RateTypeID int
	TaxRateID  int
	DueDays    int
}

// Options are the caller-supplied billing and audit inputs for a renewal or
// upgrade. Zero ids fall back to BillingDefaults.
type Options struct {
	RateTypeID     int
	TaxRateID      int
	DiscountTypeID *int
	DiscountAmount decimal.Decimal
	InvoiceDate    *time.Time
	DueDate        *time.Time
	Notes          string
	CreatedBy      int
	SendInvoice    bool

	// Upgrade only.
	UpgradeDate      *time.Time
	DisableProration bool
}

type Service interface {
	RenewSubscription(ctx context.Context, subscriptionID int, planID *int, opts Options) (*RenewalResult, error)
	UpgradeSubscription(ctx context.Context, subscriptionID, planID int, opts Options) (*UpgradeResult, error)
	PreviewRenewal(ctx context.Context, subscriptionID int) (*RenewalPreview, error)
	ListInvoices(ctx context.Context, subscriptionID int) ([]billing.Invoice, error)
	ListMemberSubscriptions(ctx context.Context, memberID int) ([]MemberSubscription, error)
	ListPlans(ctx context.Context) ([]plan.Plan, error)
}

type Deps struct {
	Subscriptions Store
	Plans         PlanFinder
	Billing       BillingStore
	Members       MemberFinder
	Notifier      InvoiceNotifier
	Tx            db.TxRunner
	Defaults      BillingDefaults
}

type service struct {
	subs     Store
	plans    PlanFinder
	billing  BillingStore
	members  MemberFinder
	notifier InvoiceNotifier
	tx       db.TxRunner
	defaults BillingDefaults
	now      func() time.Time
}

func NewService(deps Deps) Service {
	return &service{
		subs:     deps.Subscriptions,
		plans:    deps.Plans,
		billing:  deps.Billing,
		members:  deps.Members,
		notifier: deps.Notifier,
		tx:       deps.Tx,
		defaults: deps.Defaults,
		now:      time.Now,
	}
}

type billingTerms struct {
	rateType *billing.RateType
	taxRate  *billing.TaxRate
	discount billing.Discount
}

func (s *service) resolveTerms(ctx context.Context, opts Options) (billingTerms, error) {
	rateTypeID := opts.RateTypeID
	if rateTypeID == 0 {
		rateTypeID = s.defaults.RateTypeID
	}
	taxRateID := opts.TaxRateID
	if taxRateID == 0 {
		taxRateID = s.defaults.TaxRateID
	}
	if rateTypeID == 0 || taxRateID == 0 {
		return billingTerms{}, ErrBillingConfigMissing
	}

	rateType, err := s.billing.GetRateType(ctx, rateTypeID)
	if err != nil {
		return billingTerms{}, err
	}
	taxRate, err := s.billing.GetTaxRate(ctx, taxRateID)
	if err != nil {
		return billingTerms{}, err
	}

	terms := billingTerms{
		rateType: rateType,
		taxRate:  taxRate,
		discount: billing.Discount{Amount: opts.DiscountAmount},
	}
	if opts.DiscountTypeID != nil {
		dt, err := s.billing.GetDiscountType(ctx, *opts.DiscountTypeID)
		if err != nil {
			return billingTerms{}, err
		}
		terms.discount.Type = dt
	}
	return terms, nil
}

func (s *service) newInvoice(
	subscriptionID int,
	action billing.Action,
	amounts billing.Amounts,
	from time.Time,
	to *time.Time,
	terms billingTerms,
	opts Options,
) *billing.Invoice {
	invoiceDate := s.now()
	if opts.InvoiceDate != nil {
		invoiceDate = *opts.InvoiceDate
	}

	inv := &billing.Invoice{
		MemberSubscriptionID: subscriptionID,
		Reference:            billing.NewInvoiceReference(subscriptionID, invoiceDate),
		RateTypeID:           terms.rateType.ID,
		TaxRateID:            terms.taxRate.ID,
		InvoiceDate:          invoiceDate,
		FromDate:             from,
		ToDate:               to,
		DueDate:              billing.DueDate(invoiceDate, opts.DueDate, s.defaults.DueDays),
		Amount:               amounts.Base,
		TaxAmount:            amounts.Tax,
		DiscountAmount:       amounts.Discount,
		TotalAmount:          amounts.Total,
		Status:               billing.InvoiceStatusPending,
		Action:               action,
		CreatedBy:            opts.CreatedBy,
	}
	if terms.discount.Type != nil {
		id := terms.discount.Type.ID
		inv.DiscountTypeID = &id
	}
	if action == billing.ActionUpgrade {
		inv.ProrationAmount = decimal.NewNullDecimal(amounts.Proration)
	}
	return inv
}

// RenewSubscription extends the subscription in place. The row keeps its id;
// plan, dates and status are overwritten and a renewal invoice is created in
// the same transaction.
func (s *service) RenewSubscription(ctx context.Context, subscriptionID int, planID *int, opts Options) (*RenewalResult, error) {
	sub, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !CanRenew(sub) {
		return nil, ErrCannotRenew
	}

	targetPlanID := sub.PlanID
	if planID != nil {
		targetPlanID = *planID
	}
	p, err := s.plans.GetByID(ctx, targetPlanID)
	if err != nil {
		return nil, err
	}

	terms, err := s.resolveTerms(ctx, opts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	renewalType := DetermineRenewalType(sub, now)
	start := RenewalStartDate(renewalType, sub, now)
	end, err := p.EndDate(start)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", p.ID, err)
	}

	sub.PlanID = p.ID
	sub.StartDate = start
	sub.EndDate = &end
	sub.Status = StatusPending
	sub.AppendNote(renewalNote(renewalType, p.ID, start, end))
	if opts.Notes != "" {
		sub.AppendNote(opts.Notes)
	}

	action := billing.ActionRenew
	if renewalType == RenewalNew {
		action = billing.ActionNew
	}
	amounts := billing.RenewalAmounts(p.Price, *terms.taxRate, terms.discount)
	inv := s.newInvoice(sub.ID, action, amounts, start, &end, terms, opts)

	err = s.tx.InTx(ctx, func(q db.DBTX) error {
		if err := s.subs.ApplyRenewal(ctx, q, sub); err != nil {
			return fmt.Errorf("renew subscription %d: %w", sub.ID, err)
		}
		if err := s.billing.CreateInvoice(ctx, q, inv); err != nil {
			return fmt.Errorf("create renewal invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(billing.ActionRenew), string(renewalType))
	metrics.RecordInvoice(string(action))
	logger.Info("subscription renewed",
		"subscription_id", sub.ID,
		"renewal_type", renewalType,
		"plan_id", p.ID,
		"invoice", inv.Reference,
	)

	if opts.SendInvoice {
		s.sendInvoice(ctx, sub.MemberID, inv)
	}

	return &RenewalResult{
		Subscription: sub,
		Invoice:      inv,
		RenewalType:  renewalType,
		StartDate:    start,
		EndDate:      end,
		Transition: Transition{
			Kind:                   TransitionMutated,
			SubscriptionID:         sub.ID,
			PreviousSubscriptionID: sub.ID,
		},
	}, nil
}

func renewalNote(rt RenewalType, planID int, start, end time.Time) string {
	return fmt.Sprintf("Renewed (%s) on plan #%d from %s to %s",
		rt, planID, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

// UpgradeSubscription replaces the subscription with a new pending one on
// planID starting at the upgrade date. The old row is cancelled and the
// upgrade invoice carries the prorated difference for its unused days.
func (s *service) UpgradeSubscription(ctx context.Context, subscriptionID, planID int, opts Options) (*UpgradeResult, error) {
	current, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	newPlan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !CanUpgrade(current, newPlan) {
		return nil, ErrCannotUpgrade
	}

	currentPlan, err := s.plans.GetByID(ctx, current.PlanID)
	if err != nil {
		return nil, err
	}

	terms, err := s.resolveTerms(ctx, opts)
	if err != nil {
		return nil, err
	}

	at := s.now()
	if opts.UpgradeDate != nil {
		at = *opts.UpgradeDate
	}

	proration := zeroProration()
	if current.Status == StatusInProgress && !opts.DisableProration {
		proration, err = CalculateProration(current, currentPlan, newPlan, at)
		if err != nil {
			return nil, fmt.Errorf("proration: %w", err)
		}
	}

	end, err := newPlan.EndDate(at)
	if err != nil {
		return nil, fmt.Errorf("plan %d: %w", newPlan.ID, err)
	}

	createdBy := opts.CreatedBy
	if createdBy == 0 {
		createdBy = current.CreatedBy
	}
	upgraded := &MemberSubscription{
		MemberID:  current.MemberID,
		PlanID:    newPlan.ID,
		StartDate: at,
		EndDate:   &end,
		Status:    StatusPending,
		BranchID:  current.BranchID,
		CreatedBy: createdBy,
	}
	upgraded.AppendNote(fmt.Sprintf("Upgraded from subscription #%d", current.ID))
	if opts.Notes != "" {
		upgraded.AppendNote(opts.Notes)
	}

	amounts := billing.UpgradeAmounts(newPlan.Price, proration.Amount, *terms.taxRate, terms.discount)

	var inv *billing.Invoice
	err = s.tx.InTx(ctx, func(q db.DBTX) error {
		if err := s.subs.Create(ctx, q, upgraded); err != nil {
			return fmt.Errorf("create upgraded subscription: %w", err)
		}
		note := fmt.Sprintf("Upgraded to subscription #%d", upgraded.ID)
		if err := s.subs.Cancel(ctx, q, current.ID, note); err != nil {
			return fmt.Errorf("cancel subscription %d: %w", current.ID, err)
		}
		inv = s.newInvoice(upgraded.ID, billing.ActionUpgrade, amounts, at, &end, terms, opts)
		if err := s.billing.CreateInvoice(ctx, q, inv); err != nil {
			return fmt.Errorf("create upgrade invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(billing.ActionUpgrade), "")
	metrics.RecordInvoice(string(billing.ActionUpgrade))
	logger.Info("subscription upgraded",
		"previous_subscription_id", current.ID,
		"subscription_id", upgraded.ID,
		"plan_id", newPlan.ID,
		"proration", proration.Amount.String(),
		"invoice", inv.Reference,
	)

	if opts.SendInvoice {
		s.sendInvoice(ctx, upgraded.MemberID, inv)
	}

	return &UpgradeResult{
		Subscription: upgraded,
		Invoice:      inv,
		Proration:    proration,
		Transition: Transition{
			Kind:                   TransitionReplaced,
			SubscriptionID:         upgraded.ID,
			PreviousSubscriptionID: current.ID,
		},
	}, nil
}

func (s *service) PreviewRenewal(ctx context.Context, subscriptionID int) (*RenewalPreview, error) {
	sub, err := s.subs.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rt := DetermineRenewalType(sub, now)
	return &RenewalPreview{
		SubscriptionID: sub.ID,
		RenewalType:    rt,
		CanRenew:       CanRenew(sub),
		StartDate:      RenewalStartDate(rt, sub, now),
	}, nil
}

// sendInvoice mails the invoice to the member. Delivery problems are logged
// and never undo the committed transition.
func (s *service) sendInvoice(ctx context.Context, memberID int, inv *billing.Invoice) {
	if s.notifier == nil || s.members == nil {
		return
	}

	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		logger.WithError(err).Error("failed to load member for invoice", "member_id", memberID)
		return
	}
	if m.Email == nil || *m.Email == "" {
		logger.Info("member has no email, invoice not sent", "member_id", memberID, "invoice", inv.Reference)
		return
	}

	if err := s.notifier.SendInvoice(ctx, *m.Email, m.FullName(), inv); err != nil {
		logger.WithError(err).Error("failed to send invoice", "invoice", inv.Reference)
		return
	}
	if err := s.billing.MarkSent(ctx, inv.ID); err != nil {
		logger.WithError(err).Error("failed to mark invoice sent", "invoice", inv.Reference)
		return
	}
	inv.IsSent = true
}

// ListInvoices returns the subscription's invoices, newest first.
func (s *service) ListInvoices(ctx context.Context, subscriptionID int) ([]billing.Invoice, error) {
	if _, err := s.subs.GetByID(ctx, subscriptionID); err != nil {
		return nil, err
	}
	invoices, err := s.billing.ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("list invoices for subscription %d: %w", subscriptionID, err)
	}
	return invoices, nil
}

// ListMemberSubscriptions returns every subscription row the member has had,
// including the cancelled rows left behind by upgrades.
func (s *service) ListMemberSubscriptions(ctx context.Context, memberID int) ([]MemberSubscription, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	subs, err := s.subs.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for member %d: %w", memberID, err)
	}
	return subs, nil
}

// ListPlans returns the plans a renewal or upgrade can target.
func (s *service) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	return s.plans.ListActive(ctx)
}
