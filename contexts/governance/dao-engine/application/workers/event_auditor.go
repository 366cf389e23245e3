package workers

import (
	"context"
	"log/slog"

	application "agora/contexts/governance/dao-engine/application"
	"agora/contexts/governance/dao-engine/ports"
)

// EventSubscriber is the bus surface the auditor consumes from.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, ports.EventEnvelope) error,
	) error
}

// EventAuditor tails published governance events and writes an audit log
// line per event. It is the first consumer of the relay output and doubles
// as a liveness signal for the bus wiring.
type EventAuditor struct {
	Subscriber    EventSubscriber
	Topics        []string
	ConsumerGroup string
	Logger        *slog.Logger
}

// Run subscribes to every configured topic and blocks until ctx is done.
func (a EventAuditor) Run(ctx context.Context) error {
	logger := application.ResolveLogger(a.Logger)
	for _, topic := range a.Topics {
		topic := topic
		err := a.Subscriber.Subscribe(ctx, topic, a.ConsumerGroup, func(_ context.Context, event ports.EventEnvelope) error {
			logger.Info("governance event observed",
				"event", "governance_event_audited",
				"module", "governance/dao-engine",
				"layer", "worker",
				"topic", topic,
				"event_id", event.EventID,
				"event_type", event.EventType,
				"partition_key", event.PartitionKey,
			)
			return nil
		})
		if err != nil {
			return err
		}
	}
	<-ctx.Done()
	return nil
}
