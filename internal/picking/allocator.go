package picking

import (
	"github.com/shopspring/decimal"

	"pickpack-service/internal/models"
)

// Allocate splits reported availability back across the original orders.
//
// For products with no ledger entry every line receives its full requested
// quantity. For products with a reported available quantity the pool is
// handed out greedily, first come first served, walking the orders in the
// exact sequence supplied by the order source; that sequence is the sole
// tie-break. A line that gets less than it asked for is flagged.
//
// The function is pure and never errors: ledger entries for products no
// order references are simply never consulted, since iteration is driven by
// the order lines. Callers must recompute on every packing request rather
// than cache the result, because the picker may revise a shortage report at
// any time before the session ends.
func Allocate(orders []models.Order, ledger *ShortageLedger) []models.PackingLine {
	remaining := make(map[int64]decimal.Decimal)
	lines := make([]models.PackingLine, 0)

	for _, order := range orders {
		for _, line := range order.Lines {
			avail, capped := ledger.Get(line.ProductID)
			if !capped {
				lines = append(lines, models.PackingLine{
					OrderID:      order.ID,
					ProductID:    line.ProductID,
					RequestedQty: line.RequestedQty,
					AllocatedQty: line.RequestedQty,
				})
				continue
			}

			pool, seen := remaining[line.ProductID]
			if !seen {
				pool = avail
			}

			var allocated decimal.Decimal
			switch {
			case pool.GreaterThanOrEqual(line.RequestedQty):
				allocated = line.RequestedQty
			case pool.IsPositive():
				allocated = pool
			default:
				allocated = decimal.Zero
			}

			remaining[line.ProductID] = pool.Sub(allocated)
			lines = append(lines, models.PackingLine{
				OrderID:      order.ID,
				ProductID:    line.ProductID,
				RequestedQty: line.RequestedQty,
				AllocatedQty: allocated,
				HasShortage:  allocated.LessThan(line.RequestedQty),
			})
		}
	}

	return lines
}
