package billing

import (
	"fmt"
	"math/rand"
	"time"
)

// NewInvoiceReference formats INV-<YYYYMMDD>-MS<subscription id, 6 digits>-<4 random digits>.
func NewInvoiceReference(subscriptionID int, at time.Time) string {
	return fmt.Sprintf("INV-%s-MS%06d-%04d", at.Format("20060102"), subscriptionID, 1000+rand.Intn(9000))
}

// DueDate returns due when set, otherwise invoiceDate plus dueDays.
func DueDate(invoiceDate time.Time, due *time.Time, dueDays int) time.Time {
	if due != nil {
		return *due
	}
	return invoiceDate.AddDate(0, 0, dueDays)
}
