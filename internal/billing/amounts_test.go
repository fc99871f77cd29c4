package billing

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

var (
	vat18      = TaxRate{ID: 1, Name: "VAT", Rate: d("18")}
	percentage = &DiscountType{ID: 1, Name: "Percentage"}
	flat       = &DiscountType{ID: 2, Name: "Fixed"}
)

func TestRenewalAmounts(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount Discount
		tax      string
		disc     string
		total    string
	}{
		{"no discount", "100", Discount{}, "18", "0", "118"},
		{"flat discount", "100", Discount{Type: flat, Amount: d("10")}, "18", "10", "108"},
		{"nil type is flat", "100", Discount{Amount: d("10")}, "18", "10", "108"},
		{"percentage discount", "200", Discount{Type: percentage, Amount: d("25")}, "36", "50", "186"},
		{"discount capped at base", "100", Discount{Type: flat, Amount: d("150")}, "18", "100", "18"},
		{"percentage over 100 capped", "100", Discount{Type: percentage, Amount: d("120")}, "18", "100", "18"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := RenewalAmounts(d(tt.price), vat18, tt.discount)
			assertDecimal(t, tt.price, a.Base)
			assertDecimal(t, "0", a.Proration)
			assertDecimal(t, tt.tax, a.Tax)
			assertDecimal(t, tt.disc, a.Discount)
			assertDecimal(t, tt.total, a.Total)
		})
	}
}

func TestUpgradeAmounts(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		proration string
		discount  Discount
		tax       string
		disc      string
		total     string
	}{
		// tax on (200 + 33.34) = 42.0012
		{"no discount", "200", "33.34", Discount{}, "42", "0", "275.34"},
		// discount 10% of 233.34 = 23.334, taxable 210.006, tax 37.80108
		{"percentage of base plus proration", "200", "33.34", Discount{Type: percentage, Amount: d("10")}, "37.8", "23.33", "247.81"},
		{"flat discount taxed after", "100", "0", Discount{Type: flat, Amount: d("50")}, "9", "50", "59"},
		{"discount capped at total before tax", "100", "20", Discount{Type: flat, Amount: d("500")}, "0", "120", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := UpgradeAmounts(d(tt.price), d(tt.proration), vat18, tt.discount)
			assertDecimal(t, tt.price, a.Base)
			assertDecimal(t, tt.proration, a.Proration)
			assertDecimal(t, tt.tax, a.Tax)
			assertDecimal(t, tt.disc, a.Discount)
			assertDecimal(t, tt.total, a.Total)
		})
	}
}

func TestRenewalAndUpgradeDiffer(t *testing.T) {
	discount := Discount{Type: flat, Amount: d("50")}

	renewal := RenewalAmounts(d("100"), vat18, discount)
	upgrade := UpgradeAmounts(d("100"), decimal.Zero, vat18, discount)

	assertDecimal(t, "68", renewal.Total)
	assertDecimal(t, "59", upgrade.Total)
}

func TestTotalInvariant(t *testing.T) {
	a := UpgradeAmounts(d("333.33"), d("12.345"), TaxRate{Rate: d("7.5")}, Discount{Type: percentage, Amount: d("3.3")})
	assert.True(t, a.Total.Equal(a.Base.Add(a.Proration).Add(a.Tax).Sub(a.Discount)))
}

func TestNewInvoiceReference(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	ref := NewInvoiceReference(42, at)

	assert.Regexp(t, regexp.MustCompile(`^INV-20261014-MS000042-\d{4}$`), ref)
}

func TestDueDate(t *testing.T) {
	invoiceDate := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), DueDate(invoiceDate, nil, 7))

	explicit := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, explicit, DueDate(invoiceDate, &explicit, 7))
}
