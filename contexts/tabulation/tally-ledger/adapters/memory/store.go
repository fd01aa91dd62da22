package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"scrutin/contexts/tabulation/tally-ledger/domain/entities"
	domainerrors "scrutin/contexts/tabulation/tally-ledger/domain/errors"
	"scrutin/contexts/tabulation/tally-ledger/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	tallies    map[string]entities.StationTally
	counts     map[string]entities.CandidateVoteCount // countID
	registered map[string]int                         // stationID

	// invalidationHooks run after a successful ApplyInvalidate, still under
	// the lock. Test wiring uses them to mirror invalidations into other
	// in-memory stores.
	invalidationHooks []func(tallyID string)
}

func NewStore() *Store {
	return &Store{
		tallies:    make(map[string]entities.StationTally),
		counts:     make(map[string]entities.CandidateVoteCount),
		registered: make(map[string]int),
	}
}

func (s *Store) SetTally(tally entities.StationTally) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tallies[strings.TrimSpace(tally.TallyID)] = tally
}

func (s *Store) SetCount(tallyID, candidacyID string, votes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	countID := uuid.NewString()
	s.counts[countID] = entities.CandidateVoteCount{
		CountID:     countID,
		TallyID:     strings.TrimSpace(tallyID),
		CandidacyID: strings.TrimSpace(candidacyID),
		Votes:       votes,
	}
}

func (s *Store) SetRegistered(stationID string, registered int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[strings.TrimSpace(stationID)] = registered
}

func (s *Store) OnInvalidate(hook func(tallyID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidationHooks = append(s.invalidationHooks, hook)
}

func (s *Store) GetTally(_ context.Context, tallyID string) (entities.StationTally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tally, ok := s.tallies[strings.TrimSpace(tallyID)]
	if !ok {
		return entities.StationTally{}, domainerrors.ErrTallyNotFound
	}
	return tally, nil
}

func (s *Store) ListCounts(_ context.Context, tallyID string) ([]entities.CandidateVoteCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.CandidateVoteCount, 0)
	for _, count := range s.counts {
		if count.TallyID == strings.TrimSpace(tallyID) {
			items = append(items, count)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CandidacyID < items[j].CandidacyID
	})
	return items, nil
}

func (s *Store) ApplyIncrement(_ context.Context, tallyID string, candidacyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally, ok := s.tallies[strings.TrimSpace(tallyID)]
	if !ok {
		return domainerrors.ErrTallyNotFound
	}
	if tally.Validated {
		return domainerrors.ErrTallyValidated
	}

	sum := 0
	var target string
	for id, count := range s.counts {
		if count.TallyID != tally.TallyID {
			continue
		}
		sum += count.Votes
		if count.CandidacyID == strings.TrimSpace(candidacyID) {
			target = id
		}
	}
	if target == "" {
		return domainerrors.ErrCandidateNotFound
	}
	if sum+1 > tally.ValidCount {
		return domainerrors.ErrSumExceedsValid
	}

	count := s.counts[target]
	count.Votes++
	count.UpdatedAt = at.UTC()
	s.counts[target] = count

	tally.UpdatedAt = at.UTC()
	s.tallies[tally.TallyID] = tally
	return nil
}

func (s *Store) ApplyFinalCounts(_ context.Context, record ports.FinalCountsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally, ok := s.tallies[strings.TrimSpace(record.TallyID)]
	if !ok {
		return domainerrors.ErrTallyNotFound
	}
	if tally.Validated {
		return domainerrors.ErrTallyValidated
	}

	sum := 0
	for _, count := range s.counts {
		if count.TallyID == tally.TallyID {
			sum += count.Votes
		}
	}
	if sum > record.Valid {
		return domainerrors.ErrSumExceedsValid
	}

	tally.VotersCount = record.Voters
	tally.SpoiledCount = record.Spoiled
	tally.BlankCount = record.Blank
	tally.ValidCount = record.Valid
	tally.Observations = record.Observations
	tally.UpdatedAt = record.UpdatedAt.UTC()
	s.tallies[tally.TallyID] = tally
	return nil
}

func (s *Store) ApplyValidate(_ context.Context, tallyID string, validatedBy string, comment string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally, ok := s.tallies[strings.TrimSpace(tallyID)]
	if !ok {
		return domainerrors.ErrTallyNotFound
	}
	if tally.Validated {
		return domainerrors.ErrAlreadyValidated
	}
	if tally.InvalidatedAt != nil {
		return domainerrors.ErrPreviouslyInvalidated
	}

	atUTC := at.UTC()
	tally.Validated = true
	tally.ValidatedBy = strings.TrimSpace(validatedBy)
	tally.ValidationComment = strings.TrimSpace(comment)
	tally.ValidatedAt = &atUTC
	tally.UpdatedAt = atUTC
	s.tallies[tally.TallyID] = tally
	return nil
}

func (s *Store) ApplyInvalidate(_ context.Context, tallyID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tally, ok := s.tallies[strings.TrimSpace(tallyID)]
	if !ok {
		return domainerrors.ErrTallyNotFound
	}

	atUTC := at.UTC()
	tally.Validated = false
	tally.InvalidatedAt = &atUTC
	tally.UpdatedAt = atUTC
	s.tallies[tally.TallyID] = tally

	for _, hook := range s.invalidationHooks {
		hook(tally.TallyID)
	}
	return nil
}

func (s *Store) RegisteredCount(_ context.Context, stationID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	registered, ok := s.registered[strings.TrimSpace(stationID)]
	if !ok {
		return 0, domainerrors.ErrStationNotFound
	}
	return registered, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.TallyRepository = (*Store)(nil)
var _ ports.StationReader = (*Store)(nil)
