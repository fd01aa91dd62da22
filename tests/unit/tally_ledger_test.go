package unit

import (
	"context"
	"errors"
	"testing"

	tallyledger "scrutin/contexts/tabulation/tally-ledger"
	"scrutin/contexts/tabulation/tally-ledger/domain/entities"
	domainerrors "scrutin/contexts/tabulation/tally-ledger/domain/errors"
	httptransport "scrutin/contexts/tabulation/tally-ledger/transport/http"
)

func TestValidateTallyRequiresSupervisorRole(t *testing.T) {
	module := tallyledger.NewInMemoryModule("SUPERVISEUR_CENA", nil)
	module.Store.SetTally(entities.StationTally{
		TallyID:     "tally-1",
		StationID:   "station-1",
		ElectionID:  "election-1",
		VotersCount: 100,
		ValidCount:  92,
	})

	err := module.Handler.ValidateTallyHandler(context.Background(), "tally-1", "user-1", "OBSERVATEUR", httptransport.ValidateTallyRequest{})
	if !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for observer, got %v", err)
	}

	if err := module.Handler.ValidateTallyHandler(context.Background(), "tally-1", "user-2", "superviseur_cena", httptransport.ValidateTallyRequest{
		Comment: "conforme",
	}); err != nil {
		t.Fatalf("supervisor validation failed: %v", err)
	}

	tally, err := module.Handler.TallyHandler(context.Background(), "tally-1")
	if err != nil {
		t.Fatalf("get tally failed: %v", err)
	}
	if !tally.Validated {
		t.Fatalf("expected validated tally")
	}
	if tally.ValidationComment != "conforme" {
		t.Fatalf("expected stored validation comment, got %q", tally.ValidationComment)
	}

	err = module.Handler.ValidateTallyHandler(context.Background(), "tally-1", "user-3", "SUPERVISEUR_CENA", httptransport.ValidateTallyRequest{})
	if !errors.Is(err, domainerrors.ErrAlreadyValidated) {
		t.Fatalf("expected ErrAlreadyValidated, got %v", err)
	}
}

func TestIncrementCandidateGuardsValidCount(t *testing.T) {
	module := tallyledger.NewInMemoryModule("SUPERVISOR", nil)
	module.Store.SetTally(entities.StationTally{
		TallyID:    "tally-1",
		StationID:  "station-1",
		ValidCount: 2,
	})
	module.Store.SetCount("tally-1", "candidacy-1", 1)
	module.Store.SetCount("tally-1", "candidacy-2", 1)

	err := module.Handler.IncrementCandidateHandler(context.Background(), "tally-1", httptransport.IncrementCandidateRequest{
		CandidacyID: "candidacy-1",
	})
	if !errors.Is(err, domainerrors.ErrSumExceedsValid) {
		t.Fatalf("expected ErrSumExceedsValid, got %v", err)
	}

	module.Store.SetTally(entities.StationTally{
		TallyID:    "tally-2",
		StationID:  "station-2",
		ValidCount: 3,
	})
	module.Store.SetCount("tally-2", "candidacy-1", 1)
	module.Store.SetCount("tally-2", "candidacy-2", 1)

	if err := module.Handler.IncrementCandidateHandler(context.Background(), "tally-2", httptransport.IncrementCandidateRequest{
		CandidacyID: "candidacy-1",
	}); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	tally, err := module.Handler.TallyHandler(context.Background(), "tally-2")
	if err != nil {
		t.Fatalf("get tally failed: %v", err)
	}
	for _, count := range tally.Counts {
		if count.CandidacyID == "candidacy-1" && count.Votes != 2 {
			t.Fatalf("expected 2 votes after increment, got %d", count.Votes)
		}
	}
}

func TestIncrementRejectedOnValidatedTally(t *testing.T) {
	module := tallyledger.NewInMemoryModule("SUPERVISOR", nil)
	module.Store.SetTally(entities.StationTally{
		TallyID:    "tally-1",
		StationID:  "station-1",
		ValidCount: 10,
		Validated:  true,
	})
	module.Store.SetCount("tally-1", "candidacy-1", 0)

	err := module.Handler.IncrementCandidateHandler(context.Background(), "tally-1", httptransport.IncrementCandidateRequest{
		CandidacyID: "candidacy-1",
	})
	if !errors.Is(err, domainerrors.ErrTallyValidated) {
		t.Fatalf("expected ErrTallyValidated, got %v", err)
	}
}

func TestSetFinalCountsValidation(t *testing.T) {
	module := tallyledger.NewInMemoryModule("SUPERVISOR", nil)
	module.Store.SetTally(entities.StationTally{
		TallyID:   "tally-1",
		StationID: "station-1",
	})

	err := module.Handler.SetFinalCountsHandler(context.Background(), "tally-1", httptransport.SetFinalCountsRequest{
		Voters:  10,
		Spoiled: 8,
		Blank:   5,
	})
	if !errors.Is(err, domainerrors.ErrInvalidCounts) {
		t.Fatalf("expected ErrInvalidCounts, got %v", err)
	}

	if err := module.Handler.SetFinalCountsHandler(context.Background(), "tally-1", httptransport.SetFinalCountsRequest{
		Voters:  100,
		Spoiled: 3,
		Blank:   5,
	}); err != nil {
		t.Fatalf("set final counts failed: %v", err)
	}
	tally, err := module.Handler.TallyHandler(context.Background(), "tally-1")
	if err != nil {
		t.Fatalf("get tally failed: %v", err)
	}
	if tally.Valid != 92 {
		t.Fatalf("expected derived valid count 92, got %d", tally.Valid)
	}
}

func TestStationStatisticsHandlesZeroDenominators(t *testing.T) {
	module := tallyledger.NewInMemoryModule("SUPERVISOR", nil)
	module.Store.SetTally(entities.StationTally{
		TallyID:   "tally-1",
		StationID: "station-1",
	})
	module.Store.SetRegistered("station-1", 0)
	module.Store.SetCount("tally-1", "candidacy-1", 0)

	stats, err := module.Handler.StationStatisticsHandler(context.Background(), "tally-1")
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.ParticipationRate != 0 {
		t.Fatalf("expected 0 participation with empty register, got %f", stats.ParticipationRate)
	}
	for _, share := range stats.Candidates {
		if share.Percent != 0 {
			t.Fatalf("expected 0 percent with no valid ballots, got %f", share.Percent)
		}
	}
}

func TestStationStatisticsComputesSharesSortedByVotes(t *testing.T) {
	module := tallyledger.NewInMemoryModule("SUPERVISOR", nil)
	module.Store.SetTally(entities.StationTally{
		TallyID:     "tally-1",
		StationID:   "station-1",
		VotersCount: 100,
		ValidCount:  80,
	})
	module.Store.SetRegistered("station-1", 200)
	module.Store.SetCount("tally-1", "candidacy-1", 20)
	module.Store.SetCount("tally-1", "candidacy-2", 60)

	stats, err := module.Handler.StationStatisticsHandler(context.Background(), "tally-1")
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.ParticipationRate != 50 {
		t.Fatalf("expected 50%% participation, got %f", stats.ParticipationRate)
	}
	if len(stats.Candidates) != 2 {
		t.Fatalf("expected 2 candidate shares, got %d", len(stats.Candidates))
	}
	if stats.Candidates[0].CandidacyID != "candidacy-2" || stats.Candidates[0].Percent != 75 {
		t.Fatalf("expected candidacy-2 first with 75%%, got %s at %f", stats.Candidates[0].CandidacyID, stats.Candidates[0].Percent)
	}
	if stats.Candidates[1].Percent != 25 {
		t.Fatalf("expected 25%% for candidacy-1, got %f", stats.Candidates[1].Percent)
	}
}
