package picking

import (
	"pickpack-service/internal/models"
)

// Aggregate consolidates the line items of all open orders in a batch into
// one PickItem per distinct product. The picker works from these totals and
// never sees per-order quantities. The function is pure: re-running it on
// the same input always yields the same totals, and an empty batch yields an
// empty result.
func Aggregate(orders []models.Order) []models.PickItem {
	index := make(map[int64]int)
	items := make([]models.PickItem, 0)

	for _, order := range orders {
		for _, line := range order.Lines {
			if i, ok := index[line.ProductID]; ok {
				items[i].TotalQty = items[i].TotalQty.Add(line.RequestedQty)
				continue
			}
			index[line.ProductID] = len(items)
			items = append(items, models.PickItem{
				ProductID: line.ProductID,
				TotalQty:  line.RequestedQty,
				Unit:      line.Unit,
				Status:    models.PickStatusPending,
			})
		}
	}

	return items
}
