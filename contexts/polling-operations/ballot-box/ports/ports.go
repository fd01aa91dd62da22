package ports

import (
	"context"
	"time"

	"scrutin/contexts/polling-operations/ballot-box/domain/entities"
)

// StationProjection is the read shape of a station owned by the
// station-lifecycle module. The ballot box never traverses beyond it.
type StationProjection struct {
	StationID       string
	ElectionID      string
	Status          string
	RegisteredCount int
}

type ElectionProjection struct {
	ElectionID string
	Status     string
}

// CastRecord is everything the atomic cast write needs. ApplyCast either
// applies all of it (mark voted, tally increments, journal append) or none.
type CastRecord struct {
	ElectionID  string
	StationID   string
	VoterNumber string
	CandidacyID string
	Kind        entities.BallotKind
	SourceIP    string
	LogEntryID  string
	CastAt      time.Time
}

type BallotRepository interface {
	GetElection(ctx context.Context, electionID string) (ElectionProjection, error)
	GetStation(ctx context.Context, stationID string) (StationProjection, error)
	// ApplyCast performs the cast transaction. The voter's has_voted flag is
	// the compare-and-swap guard: a concurrent cast for the same voter makes
	// exactly one ApplyCast succeed, the other fails with ErrAlreadyVoted.
	ApplyCast(ctx context.Context, record CastRecord) error
	ListJournal(ctx context.Context, stationID string) ([]entities.VoteLogEntry, error)
}

type RollRepository interface {
	SaveRoll(ctx context.Context, roll entities.VoterRoll) error
	GetRollByStation(ctx context.Context, stationID string) (entities.VoterRoll, bool, error)
	GetRoll(ctx context.Context, rollID string) (entities.VoterRoll, error)
	AddEntry(ctx context.Context, entry entities.RollEntry) error
	GetEntry(ctx context.Context, voterNumber string) (entities.RollEntry, error)
	ListEntries(ctx context.Context, rollID string) ([]entities.RollEntry, error)
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
