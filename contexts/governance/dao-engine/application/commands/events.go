package commands

import (
	"encoding/json"
	"time"

	"agora/contexts/governance/dao-engine/ports"
)

func newGovernanceEnvelope(
	eventID string,
	eventType string,
	partitionKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Events are partitioned by member address or proposal id so consumers
	// observe a stable per-entity order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt.UTC(),
		SourceService: "dao-engine",
		SchemaVersion: 1,
		PartitionKey:  partitionKey,
		Data:          payload,
	}, nil
}
