package commands

import (
	"encoding/json"
	"time"

	"scrutin/contexts/tabulation/dispute-resolver/ports"
)

func newDisputeEnvelope(
	eventID string,
	eventType string,
	tallyID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Resolution events are partitioned by tally so consumers see all
	// decisions touching one tally in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "dispute-resolver",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "tally_id",
		PartitionKey:     tallyID,
		Data:             payload,
	}, nil
}
