package worker

import (
	"context"

	"go.uber.org/zap"

	"pickpack-service/internal/broker"
	"pickpack-service/internal/service"
	"pickpack-service/internal/util"
)

// PickEventsWorker consumes pick events and drives the dispatch/notification
// collaborator.
type PickEventsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewPickEventsWorker creates a new pick events worker
func NewPickEventsWorker(
	consumer *broker.Consumer,
	dispatch *service.DispatchService,
) *PickEventsWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnSessionFinished(dispatch.HandleSessionFinished)
	eventHandler.OnShortageReported(dispatch.HandleShortageReported)

	return &PickEventsWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start starts the worker
func (w *PickEventsWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting pick events worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PickEventsWorker) Stop() error {
	w.logger.Info("Stopping pick events worker")
	return w.consumer.Close()
}
