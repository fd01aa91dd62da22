package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"scrutin/contexts/polling-operations/ballot-box/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/ballot-box/domain/errors"
	"scrutin/contexts/polling-operations/ballot-box/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type tallyRow struct {
	TallyID      string
	StationID    string
	ElectionID   string
	VotersCount  int
	SpoiledCount int
	BlankCount   int
	ValidCount   int
	Validated    bool
}

// Store is the in-memory adapter behind every ballot-box port. One mutex
// spans the whole cast transaction, which gives the same all-or-nothing
// visibility the postgres adapter gets from a DB transaction.
type Store struct {
	mu sync.Mutex

	elections map[string]ports.ElectionProjection
	stations  map[string]ports.StationProjection
	rolls     map[string]entities.VoterRoll
	entries   map[string]entities.RollEntry
	tallies   map[string]tallyRow
	counts    map[string]int // tallyID + "/" + candidacyID
	journal   []entities.VoteLogEntry
	outbox    map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		elections: make(map[string]ports.ElectionProjection),
		stations:  make(map[string]ports.StationProjection),
		rolls:     make(map[string]entities.VoterRoll),
		entries:   make(map[string]entities.RollEntry),
		tallies:   make(map[string]tallyRow),
		counts:    make(map[string]int),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) SetElection(projection ports.ElectionProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(projection.ElectionID)] = projection
}

func (s *Store) SetStation(projection ports.StationProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[strings.TrimSpace(projection.StationID)] = projection
}

// SetTally seeds the station tally projection the cast path increments.
func (s *Store) SetTally(tallyID, stationID, electionID string, validated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tallies[strings.TrimSpace(tallyID)] = tallyRow{
		TallyID:    strings.TrimSpace(tallyID),
		StationID:  strings.TrimSpace(stationID),
		ElectionID: strings.TrimSpace(electionID),
		Validated:  validated,
	}
}

// SetCandidateCount seeds a ballot line for a candidacy on a tally.
func (s *Store) SetCandidateCount(tallyID, candidacyID string, votes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[countKey(tallyID, candidacyID)] = votes
}

// TallyCounters reports the current counters for assertions in tests and for
// in-memory wiring of read-side modules.
func (s *Store) TallyCounters(tallyID string) (voters, blank, valid int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, exists := s.tallies[strings.TrimSpace(tallyID)]
	if !exists {
		return 0, 0, 0, false
	}
	return row.VotersCount, row.BlankCount, row.ValidCount, true
}

func (s *Store) CandidateVotes(tallyID, candidacyID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[countKey(tallyID, candidacyID)]
}

func (s *Store) GetElection(_ context.Context, electionID string) (ports.ElectionProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok {
		return ports.ElectionProjection{}, domainerrors.ErrElectionNotFound
	}
	return item, nil
}

func (s *Store) GetStation(_ context.Context, stationID string) (ports.StationProjection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.stations[strings.TrimSpace(stationID)]
	if !ok {
		return ports.StationProjection{}, domainerrors.ErrStationNotFound
	}
	return item, nil
}

func (s *Store) ApplyCast(_ context.Context, record ports.CastRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[record.VoterNumber]
	if !ok {
		return domainerrors.ErrVoterNotFound
	}
	if entry.StationID != record.StationID {
		return domainerrors.ErrWrongStation
	}
	if entry.HasVoted {
		return domainerrors.ErrAlreadyVoted
	}

	var tally *tallyRow
	for id, row := range s.tallies {
		if row.StationID == record.StationID && !row.Validated {
			copied := s.tallies[id]
			tally = &copied
			break
		}
	}
	if tally == nil {
		return domainerrors.ErrNoOpenTally
	}

	switch record.Kind {
	case entities.BallotKindCandidate:
		key := countKey(tally.TallyID, record.CandidacyID)
		if _, present := s.counts[key]; !present {
			return domainerrors.ErrCandidateNotOnBallot
		}
		s.counts[key]++
		tally.VotersCount++
		tally.ValidCount++
	case entities.BallotKindBlank:
		tally.VotersCount++
		tally.BlankCount++
	default:
		return domainerrors.ErrInvalidCastInput
	}
	s.tallies[tally.TallyID] = *tally

	entry.HasVoted = true
	entry.UpdatedAt = record.CastAt.UTC()
	s.entries[record.VoterNumber] = entry

	s.journal = append(s.journal, entities.VoteLogEntry{
		EntryID:     record.LogEntryID,
		StationID:   record.StationID,
		VoterNumber: record.VoterNumber,
		CastAt:      record.CastAt.UTC(),
		SourceIP:    record.SourceIP,
	})
	return nil
}

func (s *Store) ListJournal(_ context.Context, stationID string) ([]entities.VoteLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.VoteLogEntry, 0)
	for _, entry := range s.journal {
		if entry.StationID == strings.TrimSpace(stationID) {
			items = append(items, entry)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) SaveRoll(_ context.Context, roll entities.VoterRoll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rolls {
		if existing.StationID == roll.StationID && existing.RollID != roll.RollID {
			return domainerrors.ErrRollExists
		}
	}
	s.rolls[strings.TrimSpace(roll.RollID)] = roll
	return nil
}

func (s *Store) GetRollByStation(_ context.Context, stationID string) (entities.VoterRoll, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, roll := range s.rolls {
		if roll.StationID == strings.TrimSpace(stationID) {
			return roll, true, nil
		}
	}
	return entities.VoterRoll{}, false, nil
}

func (s *Store) GetRoll(_ context.Context, rollID string) (entities.VoterRoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roll, ok := s.rolls[strings.TrimSpace(rollID)]
	if !ok {
		return entities.VoterRoll{}, domainerrors.ErrRollNotFound
	}
	return roll, nil
}

func (s *Store) AddEntry(_ context.Context, entry entities.RollEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.VoterNumber]; exists {
		return domainerrors.ErrVoterEnrolled
	}
	s.entries[strings.TrimSpace(entry.VoterNumber)] = entry
	return nil
}

func (s *Store) GetEntry(_ context.Context, voterNumber string) (entities.RollEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[strings.TrimSpace(voterNumber)]
	if !ok {
		return entities.RollEntry{}, domainerrors.ErrVoterNotFound
	}
	return entry, nil
}

func (s *Store) ListEntries(_ context.Context, rollID string) ([]entities.RollEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.RollEntry, 0)
	for _, entry := range s.entries {
		if entry.RollID == strings.TrimSpace(rollID) {
			items = append(items, entry)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].VoterNumber < items[j].VoterNumber
	})
	return items, nil
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

func countKey(tallyID, candidacyID string) string {
	return strings.TrimSpace(tallyID) + "/" + strings.TrimSpace(candidacyID)
}

var _ ports.BallotRepository = (*Store)(nil)
var _ ports.RollRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
