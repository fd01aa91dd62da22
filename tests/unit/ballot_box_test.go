package unit

import (
	"context"
	"errors"
	"sync"
	"testing"

	ballotbox "scrutin/contexts/polling-operations/ballot-box"
	"scrutin/contexts/polling-operations/ballot-box/adapters/memory"
	domainerrors "scrutin/contexts/polling-operations/ballot-box/domain/errors"
	"scrutin/contexts/polling-operations/ballot-box/ports"
	httptransport "scrutin/contexts/polling-operations/ballot-box/transport/http"
)

func TestCastBallotCountsCandidateAndBlankVotes(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1", "candidacy-2"})
	rollID := enrollVoters(t, module, "station-1", "voter-1", "voter-2")

	first, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		CandidacyID: "candidacy-1",
	})
	if err != nil {
		t.Fatalf("candidate cast failed: %v", err)
	}
	if first.Kind != "candidate" {
		t.Fatalf("expected candidate ballot, got %s", first.Kind)
	}

	second, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.2", httptransport.CastBallotRequest{
		VoterNumber: "voter-2",
		StationID:   "station-1",
		Blank:       true,
	})
	if err != nil {
		t.Fatalf("blank cast failed: %v", err)
	}
	if second.Kind != "blank" {
		t.Fatalf("expected blank ballot, got %s", second.Kind)
	}

	voters, blank, valid, ok := module.Store.TallyCounters("tally-1")
	if !ok {
		t.Fatalf("expected tally counters")
	}
	if voters != 2 || blank != 1 || valid != 1 {
		t.Fatalf("unexpected counters: voters=%d blank=%d valid=%d", voters, blank, valid)
	}
	if votes := module.Store.CandidateVotes("tally-1", "candidacy-1"); votes != 1 {
		t.Fatalf("expected 1 candidate vote, got %d", votes)
	}
	if votes := module.Store.CandidateVotes("tally-1", "candidacy-2"); votes != 0 {
		t.Fatalf("expected 0 votes for untouched candidacy, got %d", votes)
	}

	journal, err := module.Handler.StationJournalHandler(context.Background(), "station-1")
	if err != nil {
		t.Fatalf("journal failed: %v", err)
	}
	if len(journal.Items) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(journal.Items))
	}

	entries, err := module.Handler.RollEntriesHandler(context.Background(), rollID)
	if err != nil {
		t.Fatalf("roll entries failed: %v", err)
	}
	for _, entry := range entries.Items {
		if !entry.HasVoted {
			t.Fatalf("expected voter %s to be marked as voted", entry.VoterNumber)
		}
	}
}

func TestCastBallotRejectsSecondVote(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1"})
	enrollVoters(t, module, "station-1", "voter-1")

	cast := func(candidacy string, blank bool) error {
		_, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
			VoterNumber: "voter-1",
			StationID:   "station-1",
			CandidacyID: candidacy,
			Blank:       blank,
		})
		return err
	}
	if err := cast("candidacy-1", false); err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	if err := cast("", true); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	voters, _, _, _ := module.Store.TallyCounters("tally-1")
	if voters != 1 {
		t.Fatalf("expected a single counted voter, got %d", voters)
	}
}

func TestConcurrentCastsCountExactlyOnce(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1"})
	enrollVoters(t, module, "station-1", "voter-1")

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
				VoterNumber: "voter-1",
				StationID:   "station-1",
				CandidacyID: "candidacy-1",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
			t.Fatalf("unexpected cast error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful cast, got %d", succeeded)
	}
	if votes := module.Store.CandidateVotes("tally-1", "candidacy-1"); votes != 1 {
		t.Fatalf("expected a single candidate vote, got %d", votes)
	}
}

func TestCastBallotRejections(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1"})
	module.Store.SetStation(ports.StationProjection{
		StationID:  "station-2",
		ElectionID: "election-1",
		Status:     "open",
	})
	enrollVoters(t, module, "station-1", "voter-1")

	_, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-2",
		CandidacyID: "candidacy-1",
	})
	if !errors.Is(err, domainerrors.ErrWrongStation) {
		t.Fatalf("expected ErrWrongStation, got %v", err)
	}

	_, err = module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		CandidacyID: "candidacy-404",
	})
	if !errors.Is(err, domainerrors.ErrCandidateNotOnBallot) {
		t.Fatalf("expected ErrCandidateNotOnBallot, got %v", err)
	}

	_, err = module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		CandidacyID: "candidacy-1",
		Blank:       true,
	})
	if !errors.Is(err, domainerrors.ErrInvalidCastInput) {
		t.Fatalf("expected ErrInvalidCastInput for candidacy plus blank, got %v", err)
	}

	_, err = module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-404",
		StationID:   "station-1",
		CandidacyID: "candidacy-1",
	})
	if !errors.Is(err, domainerrors.ErrVoterNotFound) {
		t.Fatalf("expected ErrVoterNotFound, got %v", err)
	}
}

func TestEligibilityReflectsRollAndVoteState(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1"})
	enrollVoters(t, module, "station-1", "voter-1")

	eligible, err := module.Handler.EligibilityHandler(context.Background(), "voter-1", "station-1")
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if !eligible.Eligible {
		t.Fatalf("expected voter to be eligible, got reason %q", eligible.Reason)
	}

	if _, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		Blank:       true,
	}); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	voted, err := module.Handler.EligibilityHandler(context.Background(), "voter-1", "station-1")
	if err != nil {
		t.Fatalf("eligibility after vote failed: %v", err)
	}
	if voted.Eligible {
		t.Fatalf("expected voter to be ineligible after voting")
	}
}

func TestRegisterRollOnePerStation(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", nil)

	if _, err := module.Handler.RegisterRollHandler(context.Background(), httptransport.RegisterRollRequest{
		StationID: "station-1",
	}); err != nil {
		t.Fatalf("register roll failed: %v", err)
	}
	_, err := module.Handler.RegisterRollHandler(context.Background(), httptransport.RegisterRollRequest{
		StationID: "station-1",
	})
	if !errors.Is(err, domainerrors.ErrRollExists) {
		t.Fatalf("expected ErrRollExists, got %v", err)
	}
}

type failingOutbox struct{}

func (failingOutbox) AppendOutbox(context.Context, ports.EventEnvelope) error {
	return errors.New("outbox unavailable")
}

func TestCastBallotSucceedsWhenOutboxAppendFails(t *testing.T) {
	store := memory.NewStore()
	module := ballotbox.NewModule(ballotbox.Dependencies{
		Ballots: store,
		Roll:    store,
		Outbox:  failingOutbox{},
		Clock:   store,
		IDGen:   store,
	})
	module.Store = store
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1"})
	enrollVoters(t, module, "station-1", "voter-1")

	resp, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		CandidacyID: "candidacy-1",
	})
	if err != nil {
		t.Fatalf("cast should survive a failed outbox append, got %v", err)
	}
	if resp.LogEntryID == "" {
		t.Fatalf("expected a recorded log entry id")
	}

	voters, _, valid, ok := module.Store.TallyCounters("tally-1")
	if !ok || voters != 1 || valid != 1 {
		t.Fatalf("unexpected counters after cast: voters=%d valid=%d ok=%v", voters, valid, ok)
	}
	if _, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		Blank:       true,
	}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted after committed cast, got %v", err)
	}
}

func seedOpenStation(module ballotbox.Module, electionID, stationID, tallyID string, candidacies []string) {
	module.Store.SetElection(ports.ElectionProjection{
		ElectionID: electionID,
		Status:     "running",
	})
	module.Store.SetStation(ports.StationProjection{
		StationID:       stationID,
		ElectionID:      electionID,
		Status:          "open",
		RegisteredCount: 100,
	})
	module.Store.SetTally(tallyID, stationID, electionID, false)
	for _, candidacy := range candidacies {
		module.Store.SetCandidateCount(tallyID, candidacy, 0)
	}
}

func enrollVoters(t *testing.T, module ballotbox.Module, stationID string, voters ...string) string {
	t.Helper()

	roll, err := module.Handler.RegisterRollHandler(context.Background(), httptransport.RegisterRollRequest{
		StationID: stationID,
	})
	if err != nil {
		t.Fatalf("register roll failed: %v", err)
	}
	for _, voter := range voters {
		if _, err := module.Handler.AddVoterHandler(context.Background(), roll.RollID, httptransport.AddVoterRequest{
			VoterNumber: voter,
		}); err != nil {
			t.Fatalf("add voter %s failed: %v", voter, err)
		}
	}
	return roll.RollID
}
