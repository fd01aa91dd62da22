package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"scrutin/contexts/tabulation/dispute-resolver/domain/entities"
	domainerrors "scrutin/contexts/tabulation/dispute-resolver/domain/errors"
	"scrutin/contexts/tabulation/dispute-resolver/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type Store struct {
	mu sync.Mutex

	disputes map[string]entities.Dispute
	tallies  map[string]bool
	outbox   map[string]outboxRecord

	// acceptHooks run after an accepted resolution, still under the lock.
	// Test wiring mirrors the tally invalidation into other stores.
	acceptHooks []func(tallyID string)
}

func NewStore() *Store {
	return &Store{
		disputes: make(map[string]entities.Dispute),
		tallies:  make(map[string]bool),
		outbox:   make(map[string]outboxRecord),
	}
}

// SetTally seeds the tally projection Submit checks against.
func (s *Store) SetTally(tallyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tallies[strings.TrimSpace(tallyID)] = true
}

func (s *Store) OnAccept(hook func(tallyID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptHooks = append(s.acceptHooks, hook)
}

func (s *Store) ApplySubmit(_ context.Context, dispute entities.Dispute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.disputes {
		if existing.Status != entities.DisputeStatusPending {
			continue
		}
		if existing.TallyID == dispute.TallyID &&
			existing.RepresentativeID == dispute.RepresentativeID &&
			existing.CandidacyID == dispute.CandidacyID {
			return domainerrors.ErrDuplicateDispute
		}
	}
	s.disputes[strings.TrimSpace(dispute.DisputeID)] = dispute
	return nil
}

func (s *Store) GetDispute(_ context.Context, disputeID string) (entities.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dispute, ok := s.disputes[strings.TrimSpace(disputeID)]
	if !ok {
		return entities.Dispute{}, domainerrors.ErrDisputeNotFound
	}
	return dispute, nil
}

func (s *Store) ApplyResolution(_ context.Context, record ports.ResolutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dispute, ok := s.disputes[strings.TrimSpace(record.DisputeID)]
	if !ok {
		return domainerrors.ErrDisputeNotFound
	}
	if dispute.Status != entities.DisputeStatusPending {
		return domainerrors.ErrAlreadyResolved
	}

	resolvedAt := record.ResolvedAt.UTC()
	switch record.Decision {
	case entities.DecisionAccepted:
		dispute.Status = entities.DisputeStatusAccepted
	case entities.DecisionRejected:
		dispute.Status = entities.DisputeStatusRejected
	default:
		return domainerrors.ErrInvalidDecision
	}
	dispute.DecisionComment = record.Comment
	dispute.ResolvedAt = &resolvedAt
	s.disputes[dispute.DisputeID] = dispute

	if dispute.Status == entities.DisputeStatusAccepted {
		for _, hook := range s.acceptHooks {
			hook(dispute.TallyID)
		}
	}
	return nil
}

func (s *Store) ListByTally(_ context.Context, tallyID string) ([]entities.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Dispute, 0)
	for _, dispute := range s.disputes {
		if dispute.TallyID == strings.TrimSpace(tallyID) {
			items = append(items, dispute)
		}
	}
	sortDisputes(items)
	return items, nil
}

func (s *Store) ListHistory(_ context.Context, filter ports.HistoryFilter) ([]entities.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Dispute, 0)
	for _, dispute := range s.disputes {
		if filter.Status != "" && dispute.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && dispute.SubmittedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && dispute.SubmittedAt.After(filter.To) {
			continue
		}
		items = append(items, dispute)
	}
	sortDisputes(items)
	return items, nil
}

func (s *Store) TallyExists(_ context.Context, tallyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tallies[strings.TrimSpace(tallyID)], nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func sortDisputes(items []entities.Dispute) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].SubmittedAt.Before(items[j].SubmittedAt)
		}
		return items[i].DisputeID < items[j].DisputeID
	})
}

var _ ports.DisputeRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
