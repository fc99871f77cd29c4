package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddDuration(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		n        int
		unit     Unit
		expected time.Time
	}{
		{"days", date(2024, 1, 1), 10, UnitDays, date(2024, 1, 11)},
		{"weeks", date(2024, 1, 1), 2, UnitWeeks, date(2024, 1, 15)},
		{"month from mid month", date(2024, 1, 15), 1, UnitMonths, date(2024, 2, 15)},
		{"month end overflows into march", date(2024, 1, 31), 1, UnitMonths, date(2024, 3, 2)},
		{"three months", date(2024, 11, 30), 3, UnitMonths, date(2025, 3, 2)},
		{"leap day plus a year", date(2024, 2, 29), 1, UnitYears, date(2025, 3, 1)},
		{"singular unit", date(2024, 1, 1), 1, Unit("Month"), date(2024, 2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddDuration(tt.start, tt.n, tt.unit)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestAddDuration_UnknownUnit(t *testing.T) {
	_, err := AddDuration(date(2024, 1, 1), 1, Unit("fortnight"))
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestDurationInDays(t *testing.T) {
	tests := []struct {
		n        int
		unit     Unit
		expected int
	}{
		{15, UnitDays, 15},
		{2, UnitWeeks, 14},
		{1, UnitMonths, 30},
		{3, UnitMonths, 90},
		{1, UnitYears, 365},
	}

	for _, tt := range tests {
		got, err := DurationInDays(tt.n, tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestPlanEndDateAndTermDays(t *testing.T) {
	p := &Plan{Duration: 1, DurationType: DurationType{Unit: UnitMonths}}

	end, err := p.EndDate(date(2024, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 2), end)

	days, err := p.TermDays()
	require.NoError(t, err)
	assert.Equal(t, 30, days)
}
