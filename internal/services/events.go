package services

import (
	"context"

	"churchledger/internal/amqp"
	"churchledger/internal/log"
	"churchledger/internal/metrics"
)

// EventPublisher delivers ledger events; *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.LedgerEvent) error
}

// notifier publishes after commit. Failures are logged and counted, never
// returned: the write already succeeded.
type notifier struct {
	events  EventPublisher
	metrics *metrics.Metrics
}

func (n notifier) publish(ctx context.Context, e *amqp.LedgerEvent) {
	if n.events == nil {
		return
	}
	if err := n.events.Publish(ctx, e); err != nil {
		n.metrics.PublishFailed()
		log.FromContext(ctx).WithComponent(log.ComponentAMQP).WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEvent, e.Type,
			log.FieldError, err)
	}
}
