package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownUnit = errors.New("unknown duration unit")

// ParseUnit accepts singular and plural spellings in any case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "days":
		return UnitDays, nil
	case "week", "weeks":
		return UnitWeeks, nil
	case "month", "months":
		return UnitMonths, nil
	case "year", "years":
		return UnitYears, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// AddDuration adds n units to start using calendar arithmetic. Month and year
// overflow follow time.AddDate normalization: 2024-01-31 plus one month is
// 2024-03-02.
func AddDuration(start time.Time, n int, unit Unit) (time.Time, error) {
	u, err := ParseUnit(string(unit))
	if err != nil {
		return time.Time{}, err
	}

	switch u {
	case UnitDays:
		return start.AddDate(0, 0, n), nil
	case UnitWeeks:
		return start.AddDate(0, 0, 7*n), nil
	case UnitMonths:
		return start.AddDate(0, n, 0), nil
	default:
		return start.AddDate(n, 0, 0), nil
	}
}

// DurationInDays converts a duration to days for proration: a month counts as
// 30 days and a year as 365. This intentionally differs from AddDuration.
func DurationInDays(n int, unit Unit) (int, error) {
	u, err := ParseUnit(string(unit))
	if err != nil {
		return 0, err
	}

	switch u {
	case UnitDays:
		return n, nil
	case UnitWeeks:
		return n * 7, nil
	case UnitMonths:
		return n * 30, nil
	default:
		return n * 365, nil
	}
}
