package lending

import (
	"context"

	"github.com/loanbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityLogHandler writes a structured audit line for every domain event
// on the bus. It subscribes as a wildcard handler so new event types are
// picked up without registration changes.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new audit log handler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger}
}

// EventTypes returns an empty slice: this handler receives all events
func (h *ActivityLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event for the audit trail
func (h *ActivityLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// Ensure ActivityLogHandler implements shared.EventHandler
var _ shared.EventHandler = (*ActivityLogHandler)(nil)
