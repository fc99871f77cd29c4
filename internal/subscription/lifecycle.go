package subscription

import (
	"time"

	"fitnesspoint/internal/plan"
)

// daysBetween counts whole days from a to b, truncated toward zero. It is
// negative when b is before a.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DetermineRenewalType classifies sub relative to now. It has no side effects.
func DetermineRenewalType(sub *MemberSubscription, now time.Time) RenewalType {
	if sub.EndDate == nil {
		return RenewalNew
	}

	end := *sub.EndDate
	if sub.Status == StatusExpired || end.Before(now) {
		return RenewalExpired
	}

	if sub.Status == StatusInProgress {
		days := daysBetween(now, end)
		switch {
		case days <= 0:
			return RenewalExpired
		case days <= EarlyRenewalWindowDays:
			return RenewalEarly
		default:
			return RenewalPre
		}
	}

	return RenewalNew
}

// RenewalStartDate is today for new and expired renewals. Early and pre
// renewals begin where the current term ends, so an active term is never
// shortened.
func RenewalStartDate(rt RenewalType, sub *MemberSubscription, now time.Time) time.Time {
	switch rt {
	case RenewalEarly, RenewalPre:
		if sub.EndDate != nil {
			return *sub.EndDate
		}
	}
	return startOfDay(now)
}

func CanRenew(sub *MemberSubscription) bool {
	return sub.Status != StatusCancelled && sub.Status != StatusRejected
}

func CanUpgrade(sub *MemberSubscription, target *plan.Plan) bool {
	return CanRenew(sub) && target != nil && target.ID != sub.PlanID
}
