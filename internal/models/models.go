package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Display metadata only;
// allocation never depends on it.
type Product struct {
	ID        int64     `db:"id" json:"id"`
	SKU       string    `db:"sku" json:"sku"`
	Name      string    `db:"name" json:"name"`
	ImageURL  string    `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order represents a customer order open for picking. Orders are read-only
// inputs to this service; the sequence in which they are loaded for a batch
// is the allocation tie-break and must be stable.
type Order struct {
	ID        int64       `db:"id" json:"id"`
	BatchID   string      `db:"batch_id" json:"batch_id"`
	ClientRef string      `db:"client_ref" json:"client_ref"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	Lines     []OrderLine `json:"lines"`
}

// OrderLine represents a single requested product within an order.
type OrderLine struct {
	ID           int64           `db:"id" json:"id"`
	OrderID      int64           `db:"order_id" json:"order_id"`
	ProductID    int64           `db:"product_id" json:"product_id"`
	RequestedQty decimal.Decimal `db:"requested_qty" json:"requested_qty"`
	Unit         string          `db:"unit" json:"unit"`
}

// PickStatus is the per-product picking state within a session.
type PickStatus string

const (
	PickStatusPending  PickStatus = "PENDING"
	PickStatusDone     PickStatus = "DONE"
	PickStatusShortage PickStatus = "SHORTAGE"
)

// PickItem is the consolidated demand for one product across the whole
// batch. The picker only ever sees this total, never per-order quantities.
type PickItem struct {
	ProductID int64           `json:"product_id"`
	TotalQty  decimal.Decimal `json:"total_qty"`
	Unit      string          `json:"unit"`
	Status    PickStatus      `json:"status"`
}

// PackingLine is one order line of the packing manifest: what the order
// asked for versus what it gets after shortage rationing.
type PackingLine struct {
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	AllocatedQty decimal.Decimal `json:"allocated_qty"`
	HasShortage  bool            `json:"has_shortage"`
}

// PackingManifest is the per-order allocation result handed to the
// downstream packing/dispatch step. It is derived state, recomputed from the
// current orders and shortage ledger on every request.
type PackingManifest struct {
	BatchID     string        `json:"batch_id"`
	Picker      string        `json:"picker"`
	Lines       []PackingLine `json:"lines"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// PickRun is the audit record persisted when a session finishes.
type PickRun struct {
	ID             int64     `db:"id" json:"id"`
	BatchID        string    `db:"batch_id" json:"batch_id"`
	Picker         string    `db:"picker" json:"picker"`
	StartedAt      time.Time `db:"started_at" json:"started_at"`
	FinishedAt     time.Time `db:"finished_at" json:"finished_at"`
	ItemCount      int       `db:"item_count" json:"item_count"`
	ShortageCount  int       `db:"shortage_count" json:"shortage_count"`
	ElapsedSeconds int64     `db:"elapsed_seconds" json:"elapsed_seconds"`
}
