package memory

import (
	"context"
	"strings"
	"sync"

	"scrutin/contexts/tabulation/result-aggregator/ports"
)

type Store struct {
	mu sync.RWMutex

	elections map[string]bool
	facts     map[string]ports.TallyFact
	votes     []ports.CandidateVoteFact
}

func NewStore() *Store {
	return &Store{
		elections: make(map[string]bool),
		facts:     make(map[string]ports.TallyFact),
	}
}

func (s *Store) SetElection(electionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(electionID)] = true
}

func (s *Store) SetTallyFact(fact ports.TallyFact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts[strings.TrimSpace(fact.TallyID)] = fact
	s.elections[strings.TrimSpace(fact.ElectionID)] = true
}

func (s *Store) SetVoteFact(fact ports.CandidateVoteFact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, fact)
}

// SetValidated flips validity on a fact in place. Dispute wiring uses it to
// mirror tally invalidation into the read side.
func (s *Store) SetValidated(tallyID string, validated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fact, ok := s.facts[strings.TrimSpace(tallyID)]
	if !ok {
		return
	}
	fact.Validated = validated
	s.facts[fact.TallyID] = fact
}

func (s *Store) ElectionExists(_ context.Context, electionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elections[strings.TrimSpace(electionID)], nil
}

func (s *Store) ListTallyFacts(_ context.Context, electionID string) ([]ports.TallyFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.TallyFact, 0, len(s.facts))
	for _, fact := range s.facts {
		if fact.ElectionID == strings.TrimSpace(electionID) {
			items = append(items, fact)
		}
	}
	return items, nil
}

func (s *Store) ListVoteFacts(_ context.Context, electionID string) ([]ports.CandidateVoteFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tallies := make(map[string]bool)
	for _, fact := range s.facts {
		if fact.ElectionID == strings.TrimSpace(electionID) {
			tallies[fact.TallyID] = true
		}
	}
	items := make([]ports.CandidateVoteFact, 0, len(s.votes))
	for _, vote := range s.votes {
		if tallies[vote.TallyID] {
			items = append(items, vote)
		}
	}
	return items, nil
}

var _ ports.ResultsReader = (*Store)(nil)
