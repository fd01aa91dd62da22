package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"scrutin/contexts/polling-operations/station-lifecycle/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/station-lifecycle/domain/errors"
	"scrutin/contexts/polling-operations/station-lifecycle/ports"

	"github.com/google/uuid"
)

type candidacyRow struct {
	CandidacyID string
	ElectionID  string
	Approved    bool
}

type tallyRow struct {
	TallyID      string
	StationID    string
	ElectionID   string
	VotersCount  int
	SpoiledCount int
	BlankCount   int
	ValidCount   int
	Observations string
	MinutesRef   string
	Validated    bool
	CreatedAt    time.Time
}

type Store struct {
	mu sync.Mutex

	elections   map[string]entities.Election
	stations    map[string]entities.Station
	candidacies map[string]candidacyRow
	tallies     map[string]tallyRow
	counts      map[string]int // tallyID + "/" + candidacyID
}

func NewStore() *Store {
	return &Store{
		elections:   make(map[string]entities.Election),
		stations:    make(map[string]entities.Station),
		candidacies: make(map[string]candidacyRow),
		tallies:     make(map[string]tallyRow),
		counts:      make(map[string]int),
	}
}

// SetCandidacy seeds the candidacy projection ApplyStart reads when it lays
// out the zero vote lines.
func (s *Store) SetCandidacy(candidacyID, electionID string, approved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidacies[strings.TrimSpace(candidacyID)] = candidacyRow{
		CandidacyID: strings.TrimSpace(candidacyID),
		ElectionID:  strings.TrimSpace(electionID),
		Approved:    approved,
	}
}

// SetCandidateVotes seeds an accumulated vote line, standing in for live
// casting done through the ballot path.
func (s *Store) SetCandidateVotes(tallyID, candidacyID string, votes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[countKey(tallyID, candidacyID)] = votes
}

// StationTally reports the tally seeded for a station, for assertions.
func (s *Store) StationTally(stationID string) (tallyID string, validated bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tallies {
		if row.StationID == strings.TrimSpace(stationID) {
			return row.TallyID, row.Validated, true
		}
	}
	return "", false, false
}

// FinalCounts reports the frozen counts on a station's tally.
func (s *Store) FinalCounts(stationID string) (voters, spoiled, blank, valid int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tallies {
		if row.StationID == strings.TrimSpace(stationID) {
			return row.VotersCount, row.SpoiledCount, row.BlankCount, row.ValidCount, true
		}
	}
	return 0, 0, 0, 0, false
}

func (s *Store) SaveElection(_ context.Context, election entities.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elections[strings.TrimSpace(election.ElectionID)] = election
	return nil
}

func (s *Store) GetElection(_ context.Context, electionID string) (entities.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok || election.Archived {
		return entities.Election{}, domainerrors.ErrElectionNotFound
	}
	return election, nil
}

func (s *Store) ApplyStart(_ context.Context, electionID string, startedAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok || election.Archived {
		return 0, domainerrors.ErrElectionNotFound
	}
	if election.Status != entities.ElectionStatusPlanned {
		return 0, domainerrors.ErrElectionNotPlanned
	}

	approved := make([]string, 0)
	for _, candidacy := range s.candidacies {
		if candidacy.ElectionID == election.ElectionID && candidacy.Approved {
			approved = append(approved, candidacy.CandidacyID)
		}
	}
	sort.Strings(approved)

	seeded := 0
	for _, station := range s.stations {
		if station.ElectionID != election.ElectionID || station.Archived {
			continue
		}
		tallyID := uuid.NewString()
		s.tallies[tallyID] = tallyRow{
			TallyID:    tallyID,
			StationID:  station.StationID,
			ElectionID: election.ElectionID,
			CreatedAt:  startedAt.UTC(),
		}
		for _, candidacyID := range approved {
			s.counts[countKey(tallyID, candidacyID)] = 0
		}
		seeded++
	}

	startedAtUTC := startedAt.UTC()
	election.Status = entities.ElectionStatusRunning
	election.StartedAt = &startedAtUTC
	election.UpdatedAt = startedAtUTC
	s.elections[election.ElectionID] = election
	return seeded, nil
}

func (s *Store) ApplyFinish(_ context.Context, electionID string, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok || election.Archived {
		return domainerrors.ErrElectionNotFound
	}
	if election.Status != entities.ElectionStatusRunning {
		return domainerrors.ErrElectionNotRunning
	}
	endedAtUTC := endedAt.UTC()
	election.Status = entities.ElectionStatusFinished
	election.EndedAt = &endedAtUTC
	election.UpdatedAt = endedAtUTC
	s.elections[election.ElectionID] = election
	return nil
}

func (s *Store) ApplyCancel(_ context.Context, electionID string, reason string, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	election, ok := s.elections[strings.TrimSpace(electionID)]
	if !ok || election.Archived {
		return domainerrors.ErrElectionNotFound
	}
	if election.Status == entities.ElectionStatusFinished || election.Status == entities.ElectionStatusCancelled {
		return domainerrors.ErrElectionTerminal
	}
	endedAtUTC := endedAt.UTC()
	election.Status = entities.ElectionStatusCancelled
	election.CancelReason = strings.TrimSpace(reason)
	election.EndedAt = &endedAtUTC
	election.UpdatedAt = endedAtUTC
	s.elections[election.ElectionID] = election
	return nil
}

func (s *Store) SaveStation(_ context.Context, station entities.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[strings.TrimSpace(station.StationID)] = station
	return nil
}

func (s *Store) GetStation(_ context.Context, stationID string) (entities.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	station, ok := s.stations[strings.TrimSpace(stationID)]
	if !ok || station.Archived {
		return entities.Station{}, domainerrors.ErrStationNotFound
	}
	return station, nil
}

func (s *Store) ListStationsByElection(_ context.Context, electionID string) ([]entities.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Station, 0)
	for _, station := range s.stations {
		if station.ElectionID == strings.TrimSpace(electionID) && !station.Archived {
			items = append(items, station)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StationID < items[j].StationID
	})
	return items, nil
}

func (s *Store) MarkOpen(_ context.Context, stationID string, openedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	station, ok := s.stations[strings.TrimSpace(stationID)]
	if !ok || station.Archived {
		return domainerrors.ErrStationNotFound
	}
	switch station.Status {
	case entities.StationStatusOpen:
		return domainerrors.ErrStationAlreadyOpen
	case entities.StationStatusClosed:
		return domainerrors.ErrStationNotOpen
	}
	openedAtUTC := openedAt.UTC()
	station.Status = entities.StationStatusOpen
	station.OpenedAt = &openedAtUTC
	station.UpdatedAt = openedAtUTC
	s.stations[station.StationID] = station
	return nil
}

func (s *Store) FinalizeClose(_ context.Context, record ports.CloseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	station, ok := s.stations[strings.TrimSpace(record.StationID)]
	if !ok || station.Archived {
		return domainerrors.ErrStationNotFound
	}
	if station.Status != entities.StationStatusOpen {
		return domainerrors.ErrStationNotOpen
	}

	var tally *tallyRow
	for id, row := range s.tallies {
		if row.StationID == station.StationID && !row.Validated {
			copied := s.tallies[id]
			tally = &copied
			break
		}
	}
	if tally == nil {
		return domainerrors.ErrNoOpenTally
	}

	counted := 0
	for key, votes := range s.counts {
		if strings.HasPrefix(key, tally.TallyID+"/") {
			counted += votes
		}
	}
	if counted > record.Valid {
		return domainerrors.ErrInvalidCounts
	}

	tally.VotersCount = record.Voters
	tally.SpoiledCount = record.Spoiled
	tally.BlankCount = record.Blank
	tally.ValidCount = record.Valid
	tally.Observations = record.Observations
	tally.MinutesRef = record.MinutesRef
	s.tallies[tally.TallyID] = *tally

	closedAtUTC := record.ClosedAt.UTC()
	station.Status = entities.StationStatusClosed
	station.ClosedAt = &closedAtUTC
	station.MinutesRef = record.MinutesRef
	station.UpdatedAt = closedAtUTC
	s.stations[station.StationID] = station
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

var _ ports.ElectionRepository = (*Store)(nil)
var _ ports.StationRepository = (*Store)(nil)
