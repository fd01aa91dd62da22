package unit

import (
	"encoding/json"
	"testing"
	"time"

	ballotports "scrutin/contexts/polling-operations/ballot-box/ports"
	disputeports "scrutin/contexts/tabulation/dispute-resolver/ports"
	"scrutin/internal/shared/events"
)

// The module-local envelope copies must stay wire compatible with the shared
// bus envelope; the relays republish the stored payload bytes verbatim.
func TestModuleEnvelopesStayWireCompatibleWithBusEnvelope(t *testing.T) {
	occurredAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	ballot := ballotports.EventEnvelope{
		EventID:          "event-1",
		EventType:        "ballot.cast",
		SourceService:    "ballot-box",
		OccurredAt:       occurredAt,
		TraceID:          "trace-1",
		SchemaVersion:    1,
		PartitionKeyPath: "station_id",
		PartitionKey:     "station-1",
		Data:             []byte(`{"station_id":"station-1"}`),
	}
	payload, err := json.Marshal(ballot)
	if err != nil {
		t.Fatalf("marshal ballot envelope: %v", err)
	}
	var onBus events.Envelope
	if err := json.Unmarshal(payload, &onBus); err != nil {
		t.Fatalf("unmarshal into bus envelope: %v", err)
	}
	if onBus.EventID != ballot.EventID || onBus.EventType != ballot.EventType {
		t.Fatalf("identity fields lost: %+v", onBus)
	}
	if onBus.PartitionKey != "station-1" || onBus.PartitionKeyPath != "station_id" {
		t.Fatalf("partitioning fields lost: %+v", onBus)
	}
	if !onBus.OccurredAt.Equal(occurredAt) || onBus.SchemaVersion != 1 {
		t.Fatalf("versioning fields lost: %+v", onBus)
	}

	dispute := disputeports.EventEnvelope{
		EventID:      "event-2",
		EventType:    "dispute.resolved",
		PartitionKey: "tally-1",
		OccurredAt:   occurredAt,
	}
	payload, err = json.Marshal(dispute)
	if err != nil {
		t.Fatalf("marshal dispute envelope: %v", err)
	}
	if err := json.Unmarshal(payload, &onBus); err != nil {
		t.Fatalf("unmarshal dispute envelope into bus envelope: %v", err)
	}
	if onBus.EventType != "dispute.resolved" || onBus.PartitionKey != "tally-1" {
		t.Fatalf("dispute envelope fields lost: %+v", onBus)
	}
}
