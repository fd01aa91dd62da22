package events

import "time"

// Envelope is the canonical event shape exchanged between modules through the
// outbox and the message bus. Events are partitioned by station so that
// per-station ordering survives relay and consumption.
type Envelope struct {
	EventID          string    `json:"event_id"`
	EventType        string    `json:"event_type"`
	SourceService    string    `json:"source_service"`
	OccurredAt       time.Time `json:"occurred_at"`
	TraceID          string    `json:"trace_id"`
	SchemaVersion    int       `json:"schema_version"`
	PartitionKeyPath string    `json:"partition_key_path"`
	PartitionKey     string    `json:"partition_key"`
	Data             []byte    `json:"data"`
}
