package service

import (
	"context"

	"go.uber.org/zap"

	"pickpack-service/internal/models"
	"pickpack-service/internal/util"
)

// DispatchService stands in for the downstream packing/dispatch and
// notification collaborators. It consumes the events this service publishes
// and logs what a real integration would forward.
type DispatchService struct {
	logger *zap.Logger
}

// NewDispatchService creates a new dispatch service
func NewDispatchService() *DispatchService {
	return &DispatchService{logger: util.GetLogger()}
}

// HandleSessionFinished receives the final manifest of a run and hands the
// per-order parcels to dispatch.
func (ds *DispatchService) HandleSessionFinished(ctx context.Context, event *models.SessionFinishedEvent) error {
	_, span := util.StartSpan(ctx, "DispatchService.HandleSessionFinished")
	defer span.End()

	short := 0
	for _, line := range event.Lines {
		if line.HasShortage {
			short++
		}
	}

	ds.logger.Info("Manifest received for dispatch",
		zap.String("batch_id", event.BatchID),
		zap.String("picker", event.Picker),
		zap.Int("lines", len(event.Lines)),
		zap.Int("short_lines", short),
		zap.Int64("elapsed_seconds", event.ElapsedSeconds))

	return nil
}

// HandleShortageReported notifies the affected clients that a product came
// up short during picking.
func (ds *DispatchService) HandleShortageReported(ctx context.Context, event *models.ShortageReportedEvent) error {
	_, span := util.StartSpan(ctx, "DispatchService.HandleShortageReported")
	defer span.End()

	ds.logger.Info("Shortage notification",
		zap.String("batch_id", event.BatchID),
		zap.Int64("product_id", event.ProductID),
		zap.String("requested", event.RequestedQty.String()),
		zap.String("actual", event.ActualQty.String()))

	return nil
}
