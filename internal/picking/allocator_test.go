package picking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickpack-service/internal/models"
)

// tomatoOrders is the two-order scenario used throughout: order 1 wants 5 kg
// of product 100, order 2 wants 3 kg, in that sequence.
func tomatoOrders() []models.Order {
	return []models.Order{
		{ID: 1, Lines: []models.OrderLine{
			{OrderID: 1, ProductID: 100, RequestedQty: qty("5"), Unit: "kg"},
		}},
		{ID: 2, Lines: []models.OrderLine{
			{OrderID: 2, ProductID: 100, RequestedQty: qty("3"), Unit: "kg"},
		}},
	}
}

func TestAllocateNoShortage(t *testing.T) {
	lines := Allocate(tomatoOrders(), NewShortageLedger())

	require.Len(t, lines, 2)
	assert.True(t, lines[0].AllocatedQty.Equal(qty("5")))
	assert.False(t, lines[0].HasShortage)
	assert.True(t, lines[1].AllocatedQty.Equal(qty("3")))
	assert.False(t, lines[1].HasShortage)
}

func TestAllocatePartialShortage(t *testing.T) {
	ledger := NewShortageLedger()
	ledger.Set(100, qty("6"))

	lines := Allocate(tomatoOrders(), ledger)

	require.Len(t, lines, 2)
	// first order in sequence is satisfied in full
	assert.Equal(t, int64(1), lines[0].OrderID)
	assert.True(t, lines[0].AllocatedQty.Equal(qty("5")))
	assert.False(t, lines[0].HasShortage)
	// second order gets the remainder
	assert.Equal(t, int64(2), lines[1].OrderID)
	assert.True(t, lines[1].AllocatedQty.Equal(qty("1")))
	assert.True(t, lines[1].HasShortage)
}

func TestAllocateZeroAvailable(t *testing.T) {
	ledger := NewShortageLedger()
	ledger.Set(100, decimal.Zero)

	lines := Allocate(tomatoOrders(), ledger)

	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, line.AllocatedQty.IsZero())
		assert.True(t, line.HasShortage)
	}
}

func TestAllocateSurplusAvailable(t *testing.T) {
	ledger := NewShortageLedger()
	ledger.Set(100, qty("20"))

	lines := Allocate(tomatoOrders(), ledger)

	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, line.AllocatedQty.Equal(line.RequestedQty))
		assert.False(t, line.HasShortage)
	}
}

func TestAllocateConservation(t *testing.T) {
	orders := []models.Order{
		{ID: 1, Lines: []models.OrderLine{
			{OrderID: 1, ProductID: 100, RequestedQty: qty("2.5"), Unit: "kg"},
			{OrderID: 1, ProductID: 200, RequestedQty: qty("4"), Unit: "pcs"},
		}},
		{ID: 2, Lines: []models.OrderLine{
			{OrderID: 2, ProductID: 100, RequestedQty: qty("2.5"), Unit: "kg"},
		}},
		{ID: 3, Lines: []models.OrderLine{
			{OrderID: 3, ProductID: 100, RequestedQty: qty("5"), Unit: "kg"},
		}},
	}

	ledger := NewShortageLedger()
	ledger.Set(100, qty("4"))

	lines := Allocate(orders, ledger)

	var allocated100, allocated200 decimal.Decimal
	for _, line := range lines {
		switch line.ProductID {
		case 100:
			allocated100 = allocated100.Add(line.AllocatedQty)
		case 200:
			allocated200 = allocated200.Add(line.AllocatedQty)
		}
		assert.True(t, line.AllocatedQty.LessThanOrEqual(line.RequestedQty))
	}

	// capped product sums to min(available, demand)
	assert.True(t, allocated100.Equal(qty("4")))
	// uncapped product is fully satisfied
	assert.True(t, allocated200.Equal(qty("4")))
}

func TestAllocateFIFOFairness(t *testing.T) {
	orders := tomatoOrders()
	ledger := NewShortageLedger()
	ledger.Set(100, qty("6"))

	lines := Allocate(orders, ledger)
	reversed := Allocate([]models.Order{orders[1], orders[0]}, ledger)

	// order 1 does at least as well in first position as in last
	var inFirst, inLast decimal.Decimal
	for _, line := range lines {
		if line.OrderID == 1 {
			inFirst = line.AllocatedQty
		}
	}
	for _, line := range reversed {
		if line.OrderID == 1 {
			inLast = line.AllocatedQty
		}
	}
	assert.True(t, inFirst.GreaterThanOrEqual(inLast))
}

func TestAllocateIgnoresStaleLedgerEntries(t *testing.T) {
	ledger := NewShortageLedger()
	ledger.Set(100, qty("6"))
	ledger.Set(999, qty("1")) // product no order references

	lines := Allocate(tomatoOrders(), ledger)

	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, int64(100), line.ProductID)
	}
}

func TestAllocateReflectsLedgerEdits(t *testing.T) {
	orders := tomatoOrders()
	ledger := NewShortageLedger()

	ledger.Set(100, qty("6"))
	first := Allocate(orders, ledger)
	assert.True(t, first[1].HasShortage)

	// picker corrects the report: recomputation must see the new value
	ledger.Set(100, qty("8"))
	second := Allocate(orders, ledger)
	assert.False(t, second[1].HasShortage)
	assert.True(t, second[1].AllocatedQty.Equal(qty("3")))

	// and a cleared entry means full availability again
	ledger.Clear(100)
	third := Allocate(orders, ledger)
	assert.False(t, third[0].HasShortage)
	assert.False(t, third[1].HasShortage)
}

func TestAllocateEmptyOrders(t *testing.T) {
	lines := Allocate(nil, NewShortageLedger())
	assert.Empty(t, lines)
}
