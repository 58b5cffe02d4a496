package picking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pickpack-service/internal/models"
)

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrders() []models.Order {
	return []models.Order{
		{
			ID:        1,
			ClientRef: "cafe-nord",
			Lines: []models.OrderLine{
				{OrderID: 1, ProductID: 100, RequestedQty: qty("5"), Unit: "kg"},
				{OrderID: 1, ProductID: 200, RequestedQty: qty("2"), Unit: "pcs"},
			},
		},
		{
			ID:        2,
			ClientRef: "bistro-sud",
			Lines: []models.OrderLine{
				{OrderID: 2, ProductID: 100, RequestedQty: qty("3"), Unit: "kg"},
			},
		},
	}
}

func TestAggregateSumsAcrossOrders(t *testing.T) {
	items := Aggregate(testOrders())

	assert.Len(t, items, 2)
	assert.Equal(t, int64(100), items[0].ProductID)
	assert.True(t, items[0].TotalQty.Equal(qty("8")))
	assert.Equal(t, models.PickStatusPending, items[0].Status)
	assert.Equal(t, int64(200), items[1].ProductID)
	assert.True(t, items[1].TotalQty.Equal(qty("2")))
}

func TestAggregateIsIdempotent(t *testing.T) {
	orders := testOrders()

	first := Aggregate(orders)
	second := Aggregate(orders)

	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ProductID, second[i].ProductID)
		assert.True(t, first[i].TotalQty.Equal(second[i].TotalQty))
	}
}

func TestAggregateEmptyBatch(t *testing.T) {
	items := Aggregate(nil)
	assert.Empty(t, items)

	items = Aggregate([]models.Order{{ID: 7, ClientRef: "empty"}})
	assert.Empty(t, items)
}
