package events

import (
	"context"

	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// LoggingHandler logs every event of one type. Registering one per
// event type gives the shipped binary an audit trail of domain activity.
type LoggingHandler struct {
	eventType string
	logger    interfaces.Logger
}

// NewLoggingHandler creates a logging handler for one event type.
func NewLoggingHandler(eventType string, logger interfaces.Logger) *LoggingHandler {
	return &LoggingHandler{
		eventType: eventType,
		logger:    logger,
	}
}

// Handle logs the event.
func (h *LoggingHandler) Handle(ctx context.Context, event interfaces.Event) error {
	h.logger.Info("Domain event",
		interfaces.String("event_type", event.EventType()),
		interfaces.String("aggregate_id", event.AggregateID()),
		interfaces.Int64("timestamp", event.Timestamp()))
	return nil
}

// EventType returns the type this handler is registered for.
func (h *LoggingHandler) EventType() string { return h.eventType }

// SubscribeLogging registers a logging handler for each given event type.
func SubscribeLogging(bus interfaces.EventBus, logger interfaces.Logger, eventTypes ...string) error {
	for _, eventType := range eventTypes {
		if err := bus.Subscribe(eventType, NewLoggingHandler(eventType, logger)); err != nil {
			return err
		}
	}
	return nil
}
