package commands

import (
	"encoding/json"
	"time"

	"scrutin/contexts/polling-operations/ballot-box/ports"
)

func newBallotEnvelope(
	eventID string,
	eventType string,
	stationID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Cast events are partitioned by station so per-station ordering holds on
	// station-scoped consumers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ballot-box",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "station_id",
		PartitionKey:     stationID,
		Data:             payload,
	}, nil
}
