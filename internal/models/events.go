package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeSessionStarted   = "PICK_SESSION_STARTED"
	EventTypeShortageReported = "SHORTAGE_REPORTED"
	EventTypeSessionFinished  = "PICK_SESSION_FINISHED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionStartedEvent published when a picker starts a batch run
type SessionStartedEvent struct {
	BaseEvent
	BatchID   string `json:"batch_id"`
	Picker    string `json:"picker"`
	ItemCount int    `json:"item_count"`
}

// ShortageReportedEvent published when a picker reports a shortfall
type ShortageReportedEvent struct {
	BaseEvent
	BatchID      string          `json:"batch_id"`
	Picker       string          `json:"picker"`
	ProductID    int64           `json:"product_id"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	ActualQty    decimal.Decimal `json:"actual_qty"`
}

// SessionFinishedEvent published when the run ends; carries the final
// packing manifest for the downstream dispatch collaborator.
type SessionFinishedEvent struct {
	BaseEvent
	BatchID        string        `json:"batch_id"`
	Picker         string        `json:"picker"`
	ElapsedSeconds int64         `json:"elapsed_seconds"`
	Lines          []PackingLine `json:"lines"`
}
