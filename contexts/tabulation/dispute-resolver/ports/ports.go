package ports

import (
	"context"
	"time"

	"scrutin/contexts/tabulation/dispute-resolver/domain/entities"
)

// HistoryFilter narrows the dispute history query. Zero values mean no
// filter on that dimension.
type HistoryFilter struct {
	Status entities.DisputeStatus
	From   time.Time
	To     time.Time
}

type DisputeRepository interface {
	// ApplySubmit inserts the dispute; a pending dispute for the same
	// (tally, representative, candidacy) triple fails with
	// ErrDuplicateDispute. The uniqueness backstop lives in storage.
	ApplySubmit(ctx context.Context, dispute entities.Dispute) error
	GetDispute(ctx context.Context, disputeID string) (entities.Dispute, error)
	// ApplyResolution resolves a pending dispute; when the decision is
	// accepted the tally invalidation commits in the same transaction.
	ApplyResolution(ctx context.Context, record ResolutionRecord) error
	ListByTally(ctx context.Context, tallyID string) ([]entities.Dispute, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]entities.Dispute, error)
	TallyExists(ctx context.Context, tallyID string) (bool, error)
}

type ResolutionRecord struct {
	DisputeID  string
	TallyID    string
	Decision   entities.DisputeDecision
	Comment    string
	ResolvedAt time.Time
}

type EventEnvelope struct {
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

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
