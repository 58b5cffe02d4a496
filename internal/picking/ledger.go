package picking

import (
	"github.com/shopspring/decimal"
)

// ShortageLedger maps a product to the last actually-available quantity the
// picker reported for it. Absence of an entry means "fully available as
// requested" and is distinct from an explicit zero, which means "reported
// and confirmed zero units on the shelf". The ledger is scoped to a single
// session.
type ShortageLedger struct {
	entries map[int64]decimal.Decimal
}

// NewShortageLedger creates an empty ledger
func NewShortageLedger() *ShortageLedger {
	return &ShortageLedger{entries: make(map[int64]decimal.Decimal)}
}

// Set records the available quantity for a product, overwriting any prior
// report rather than accumulating.
func (l *ShortageLedger) Set(productID int64, qty decimal.Decimal) {
	l.entries[productID] = qty
}

// Clear removes the entry for a product, restoring "assume fully available".
func (l *ShortageLedger) Clear(productID int64) {
	delete(l.entries, productID)
}

// Get returns the reported available quantity and whether an entry exists.
func (l *ShortageLedger) Get(productID int64) (decimal.Decimal, bool) {
	qty, ok := l.entries[productID]
	return qty, ok
}

// Len returns the number of products with an open shortage report.
func (l *ShortageLedger) Len() int {
	return len(l.entries)
}
