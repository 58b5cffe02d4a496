package store

import (
	"context"
	"fmt"

	"pickpack-service/internal/models"
)

// GetOpenOrders retrieves the open orders of a batch with their lines.
//
// The returned sequence (creation order, with the order ID as a stable
// second key) is a contract: it is the tie-break the packing allocator uses
// when rationing a shortage, so repeated calls within one session must yield
// the same sequence. Lines keep their insertion order within each order.
func (s *Store) GetOpenOrders(ctx context.Context, batchID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT id, batch_id, client_ref, created_at FROM orders WHERE batch_id = $1 AND status = 'OPEN' ORDER BY created_at, id",
		batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open orders: %w", err)
	}

	for i := range orders {
		var lines []models.OrderLine
		err := s.db.SelectContext(ctx, &lines,
			"SELECT id, order_id, product_id, requested_qty, unit FROM order_lines WHERE order_id = $1 ORDER BY id",
			orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load lines for order %d: %w", orders[i].ID, err)
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

// CreatePickRun persists the audit record of a finished session
func (s *Store) CreatePickRun(ctx context.Context, run *models.PickRun) error {
	query := `
		INSERT INTO pick_runs (batch_id, picker, started_at, finished_at, item_count, shortage_count, elapsed_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	return s.db.GetContext(ctx, &run.ID, query,
		run.BatchID, run.Picker, run.StartedAt, run.FinishedAt,
		run.ItemCount, run.ShortageCount, run.ElapsedSeconds)
}

// GetPickRunsByBatch retrieves the pick runs recorded for a batch
func (s *Store) GetPickRunsByBatch(ctx context.Context, batchID string) ([]models.PickRun, error) {
	var runs []models.PickRun
	err := s.db.SelectContext(ctx, &runs,
		"SELECT * FROM pick_runs WHERE batch_id = $1 ORDER BY finished_at DESC", batchID)
	return runs, err
}
