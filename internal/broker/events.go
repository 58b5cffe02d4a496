package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"pickpack-service/internal/models"
	"pickpack-service/internal/util"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSessionStarted publishes SessionStarted event
func (ep *EventPublisher) PublishSessionStarted(ctx context.Context, event *models.SessionStartedEvent) error {
	return ep.producer.PublishEvent(ctx, batchKey(event.BatchID), event)
}

// PublishShortageReported publishes ShortageReported event
func (ep *EventPublisher) PublishShortageReported(ctx context.Context, event *models.ShortageReportedEvent) error {
	return ep.producer.PublishEvent(ctx, batchKey(event.BatchID), event)
}

// PublishSessionFinished publishes SessionFinished event with the manifest
func (ep *EventPublisher) PublishSessionFinished(ctx context.Context, event *models.SessionFinishedEvent) error {
	return ep.producer.PublishEvent(ctx, batchKey(event.BatchID), event)
}

func batchKey(batchID string) string {
	return fmt.Sprintf("batch-%s", batchID)
}

// EventHandler routes consumed pick events to registered handlers
type EventHandler struct {
	onSessionFinished  func(context.Context, *models.SessionFinishedEvent) error
	onShortageReported func(context.Context, *models.ShortageReportedEvent) error
	logger             *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnSessionFinished registers a handler for SessionFinished events
func (eh *EventHandler) OnSessionFinished(handler func(context.Context, *models.SessionFinishedEvent) error) {
	eh.onSessionFinished = handler
}

// OnShortageReported registers a handler for ShortageReported events
func (eh *EventHandler) OnShortageReported(handler func(context.Context, *models.ShortageReportedEvent) error) {
	eh.onShortageReported = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeSessionFinished:
		if eh.onSessionFinished != nil {
			var event models.SessionFinishedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SessionFinished event: %w", err)
			}
			return eh.onSessionFinished(ctx, &event)
		}

	case models.EventTypeShortageReported:
		if eh.onShortageReported != nil {
			var event models.ShortageReportedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ShortageReported event: %w", err)
			}
			return eh.onShortageReported(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
