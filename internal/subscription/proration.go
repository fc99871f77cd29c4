package subscription

import (
	"time"

	"fitnesspoint/internal/plan"

	"github.com/shopspring/decimal"
)

type Proration struct {
	Amount        decimal.Decimal `json:"amount"`
	RemainingDays int             `json:"remaining_days"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
}

func zeroProration() Proration {
	return Proration{Amount: decimal.Zero, CreditAmount: decimal.Zero}
}

// CalculateProration charges the price difference for the days left on the
// current term. The old plan's daily rate comes from the actual term length;
// the new plan's from its duration under the 30/365 day approximation.
// Credit and new cost are rounded to cents before they are compared.
func CalculateProration(current *MemberSubscription, currentPlan, newPlan *plan.Plan, at time.Time) (Proration, error) {
	if current.EndDate == nil {
		return zeroProration(), nil
	}

	totalDays := daysBetween(current.StartDate, *current.EndDate)
	remainingDays := daysBetween(at, *current.EndDate)
	if remainingDays <= 0 || totalDays <= 0 {
		return zeroProration(), nil
	}

	newPlanDays, err := newPlan.TermDays()
	if err != nil {
		return Proration{}, err
	}
	if newPlanDays <= 0 {
		return zeroProration(), nil
	}

	remaining := decimal.NewFromInt(int64(remainingDays))

	oldDailyRate := currentPlan.Price.Div(decimal.NewFromInt(int64(totalDays)))
	credit := oldDailyRate.Mul(remaining).Round(2)

	newDailyRate := newPlan.Price.Div(decimal.NewFromInt(int64(newPlanDays)))
	newCost := newDailyRate.Mul(remaining).Round(2)

	return Proration{
		Amount:        decimal.Max(decimal.Zero, newCost.Sub(credit)),
		RemainingDays: remainingDays,
		CreditAmount:  credit,
	}, nil
}
