package picking

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"pickpack-service/internal/models"
)

var (
	// ErrUnknownProduct is returned when an action references a product
	// that is not part of the current batch.
	ErrUnknownProduct = errors.New("product not in current batch")

	// ErrInvalidQuantity is returned when a shortage report carries a
	// negative quantity. The session state is left unchanged.
	ErrInvalidQuantity = errors.New("shortage quantity must be non-negative")
)

// Session is the stateful core of one picker's batch run: the consolidated
// pick items, their statuses, the shortage ledger and the elapsed-time
// clock. All mutations go through ReportDone and ReportShortage; callers are
// expected to serialize access (one picker drives one session).
type Session struct {
	Picker    string
	BatchID   string
	StartedAt time.Time

	orders    []models.Order
	items     []*models.PickItem
	byProduct map[int64]*models.PickItem
	ledger    *ShortageLedger
	clock     *sessionClock
}

// NewSession aggregates the open orders of a batch into pick items and
// starts the session clock. An empty order set yields a session with no
// items, which the caller may treat as "nothing to pick".
func NewSession(picker, batchID string, orders []models.Order) *Session {
	aggregated := Aggregate(orders)

	items := make([]*models.PickItem, len(aggregated))
	byProduct := make(map[int64]*models.PickItem, len(aggregated))
	for i := range aggregated {
		items[i] = &aggregated[i]
		byProduct[aggregated[i].ProductID] = &aggregated[i]
	}

	s := &Session{
		Picker:    picker,
		BatchID:   batchID,
		StartedAt: time.Now(),
		orders:    orders,
		items:     items,
		byProduct: byProduct,
		ledger:    NewShortageLedger(),
		clock:     newSessionClock(),
	}
	s.clock.start()
	return s
}

// ReportDone marks a pick item as fully found. Any shortage entry for the
// product is deleted: "done" always means "treat as fully satisfied", even
// after a prior shortage report. Items may cycle between done and shortage
// until the session ends.
func (s *Session) ReportDone(productID int64) error {
	item, ok := s.byProduct[productID]
	if !ok {
		return ErrUnknownProduct
	}

	item.Status = models.PickStatusDone
	s.ledger.Clear(productID)
	return nil
}

// ReportShortage records the actually-available quantity for a product. The
// ledger entry is overwritten, not summed, on repeated reports. A negative
// quantity is rejected and nothing changes.
func (s *Session) ReportShortage(productID int64, actualQty decimal.Decimal) error {
	item, ok := s.byProduct[productID]
	if !ok {
		return ErrUnknownProduct
	}
	if actualQty.IsNegative() {
		return ErrInvalidQuantity
	}

	item.Status = models.PickStatusShortage
	s.ledger.Set(productID, actualQty)
	return nil
}

// Status returns the pick status of a product.
func (s *Session) Status(productID int64) (models.PickStatus, error) {
	item, ok := s.byProduct[productID]
	if !ok {
		return "", ErrUnknownProduct
	}
	return item.Status, nil
}

// Items returns a snapshot of all pick items in aggregation order.
func (s *Session) Items() []models.PickItem {
	out := make([]models.PickItem, len(s.items))
	for i, item := range s.items {
		out[i] = *item
	}
	return out
}

// PendingItems returns the picker's work queue: every item not yet marked
// done. Items reported short stay in the queue until confirmed.
func (s *Session) PendingItems() []models.PickItem {
	out := make([]models.PickItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Status == models.PickStatusDone {
			continue
		}
		out = append(out, *item)
	}
	return out
}

// Orders returns the batch orders in their load sequence.
func (s *Session) Orders() []models.Order {
	return s.orders
}

// Ledger returns the session's shortage ledger.
func (s *Session) Ledger() *ShortageLedger {
	return s.ledger
}

// ElapsedSeconds returns the session clock reading.
func (s *Session) ElapsedSeconds() int64 {
	return s.clock.Elapsed()
}

// Close stops the session clock. Safe to call more than once.
func (s *Session) Close() {
	s.clock.Stop()
}
