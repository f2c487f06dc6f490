package party

import (
	"context"

	"github.com/loanbook/backend/internal/domain/shared"
)

// eventSource is satisfied by aggregates that record domain events.
type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishDomainEvents drains the recorded events from each aggregate and
// hands them to the publisher, best effort. A nil publisher disables
// eventing entirely.
func publishDomainEvents(ctx context.Context, publisher shared.EventPublisher, sources ...eventSource) {
	if publisher == nil {
		return
	}
	for _, src := range sources {
		events := src.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = publisher.Publish(ctx, events...)
		src.ClearDomainEvents()
	}
}
