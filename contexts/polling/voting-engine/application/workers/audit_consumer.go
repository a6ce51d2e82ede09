package workers

import (
	"context"
	"log/slog"

	application "ballotbox/contexts/polling/voting-engine/application"
	"ballotbox/contexts/polling/voting-engine/ports"
)

// EventSubscriber is the bus-side contract the audit consumer attaches to.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, ports.EventEnvelope) error,
	) error
}

// AuditConsumer records vote.cast events on the audit log. It is the sink
// for the outbox relay: every admitted vote ends up as one durable audit line.
type AuditConsumer struct {
	Subscriber    EventSubscriber
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c AuditConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	return c.Subscriber.Subscribe(ctx, "vote.cast", c.ConsumerGroup, func(_ context.Context, event ports.EventEnvelope) error {
		logger.Info("vote audit event recorded",
			"event", "vote_audit_recorded",
			"module", "polling/voting-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"poll_id", event.EntityID,
			"payload", string(event.Payload),
		)
		return nil
	})
}
