package billing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amounts is the monetary breakdown of one invoice.
type Amounts struct {
	Base      decimal.Decimal
	Proration decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// Discount describes the discount requested on an invoice. A nil Type means
// a flat amount.
type Discount struct {
	Type   *DiscountType
	Amount decimal.Decimal
}

// value resolves the discount against base and caps it at base.
func (d Discount) value(base decimal.Decimal) decimal.Decimal {
	if d.Amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	v := d.Amount
	if d.Type.IsPercentage() {
		v = base.Mul(d.Amount).Div(hundred)
	}
	return decimal.Min(v, base)
}

// RenewalAmounts computes a renewal invoice: tax is charged on the full plan
// price and the discount (capped at the price) is subtracted afterwards.
func RenewalAmounts(price decimal.Decimal, tax TaxRate, discount Discount) Amounts {
	base := price
	taxAmount := base.Mul(tax.Rate).Div(hundred)
	discountValue := discount.value(base)

	return newAmounts(base, decimal.Zero, taxAmount, discountValue)
}

// UpgradeAmounts computes an upgrade invoice: the discount applies to price
// plus proration and tax is charged on what remains after the discount.
func UpgradeAmounts(price, proration decimal.Decimal, tax TaxRate, discount Discount) Amounts {
	totalBeforeTax := price.Add(proration)
	discountValue := discount.value(totalBeforeTax)
	taxable := totalBeforeTax.Sub(discountValue)
	taxAmount := taxable.Mul(tax.Rate).Div(hundred)

	return newAmounts(price, proration, taxAmount, discountValue)
}

// newAmounts rounds each component to cents and derives the total from the
// rounded parts so that Total == Base + Proration + Tax - Discount holds exactly.
func newAmounts(base, proration, tax, discount decimal.Decimal) Amounts {
	a := Amounts{
		Base:      base.Round(2),
		Proration: proration.Round(2),
		Tax:       tax.Round(2),
		Discount:  discount.Round(2),
	}
	a.Total = a.Base.Add(a.Proration).Add(a.Tax).Sub(a.Discount)
	return a
}
