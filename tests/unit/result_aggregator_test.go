package unit

import (
	"context"
	"errors"
	"testing"

	resultaggregator "scrutin/contexts/tabulation/result-aggregator"
	domainerrors "scrutin/contexts/tabulation/result-aggregator/domain/errors"
	"scrutin/contexts/tabulation/result-aggregator/ports"
)

func TestAggregateGlobalCountsValidatedTalliesOnly(t *testing.T) {
	module := resultaggregator.NewInMemoryModule(nil)
	module.Store.SetElection("election-1")
	module.Store.SetTallyFact(ports.TallyFact{
		TallyID:    "tally-1",
		StationID:  "station-1",
		ElectionID: "election-1",
		CommuneID:  "commune-1",
		Registered: 200,
		Voters:     100,
		Spoiled:    3,
		Blank:      5,
		Valid:      92,
		Validated:  true,
		Reported:   true,
	})
	module.Store.SetTallyFact(ports.TallyFact{
		TallyID:    "tally-2",
		StationID:  "station-2",
		ElectionID: "election-1",
		CommuneID:  "commune-2",
		Registered: 100,
		Voters:     50,
		Valid:      50,
		Validated:  false,
		Reported:   true,
	})
	module.Store.SetVoteFact(ports.CandidateVoteFact{TallyID: "tally-1", CandidacyID: "candidacy-1", Votes: 60})
	module.Store.SetVoteFact(ports.CandidateVoteFact{TallyID: "tally-1", CandidacyID: "candidacy-2", Votes: 32})
	module.Store.SetVoteFact(ports.CandidateVoteFact{TallyID: "tally-2", CandidacyID: "candidacy-1", Votes: 50})

	resp, err := module.Handler.AggregateHandler(context.Background(), "election-1", "")
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if resp.Level != "global" {
		t.Fatalf("expected global level by default, got %s", resp.Level)
	}
	if len(resp.Buckets) != 1 {
		t.Fatalf("expected a single global bucket, got %d", len(resp.Buckets))
	}
	bucket := resp.Buckets[0]
	if bucket.Voters != 100 || bucket.Valid != 92 || bucket.TalliesCounted != 1 {
		t.Fatalf("unvalidated tally leaked into totals: voters=%d valid=%d counted=%d", bucket.Voters, bucket.Valid, bucket.TalliesCounted)
	}
	if bucket.ParticipationRate != 50 {
		t.Fatalf("expected 50%% participation, got %f", bucket.ParticipationRate)
	}
	if len(bucket.Candidates) != 2 {
		t.Fatalf("expected 2 candidate totals, got %d", len(bucket.Candidates))
	}
	if bucket.Candidates[0].CandidacyID != "candidacy-1" || bucket.Candidates[0].Votes != 60 {
		t.Fatalf("expected candidacy-1 leading with 60 votes, got %s with %d", bucket.Candidates[0].CandidacyID, bucket.Candidates[0].Votes)
	}
}

func TestAggregateByCommuneSplitsUnits(t *testing.T) {
	module := resultaggregator.NewInMemoryModule(nil)
	module.Store.SetElection("election-1")
	module.Store.SetTallyFact(ports.TallyFact{
		TallyID:    "tally-1",
		StationID:  "station-1",
		ElectionID: "election-1",
		CommuneID:  "commune-a",
		Registered: 100,
		Voters:     60,
		Valid:      60,
		Validated:  true,
		Reported:   true,
	})
	module.Store.SetTallyFact(ports.TallyFact{
		TallyID:    "tally-2",
		StationID:  "station-2",
		ElectionID: "election-1",
		CommuneID:  "commune-b",
		Registered: 100,
		Voters:     40,
		Valid:      40,
		Validated:  true,
		Reported:   true,
	})

	resp, err := module.Handler.AggregateHandler(context.Background(), "election-1", "commune")
	if err != nil {
		t.Fatalf("aggregate by commune failed: %v", err)
	}
	if len(resp.Buckets) != 2 {
		t.Fatalf("expected 2 commune buckets, got %d", len(resp.Buckets))
	}
	if resp.Buckets[0].UnitID != "commune-a" || resp.Buckets[1].UnitID != "commune-b" {
		t.Fatalf("expected buckets sorted by unit id, got %s then %s", resp.Buckets[0].UnitID, resp.Buckets[1].UnitID)
	}
	if resp.Buckets[0].Voters != 60 || resp.Buckets[1].Voters != 40 {
		t.Fatalf("unexpected per-commune voters: %d and %d", resp.Buckets[0].Voters, resp.Buckets[1].Voters)
	}
}

func TestAggregateRejectsUnknownLevelAndElection(t *testing.T) {
	module := resultaggregator.NewInMemoryModule(nil)
	module.Store.SetElection("election-1")

	if _, err := module.Handler.AggregateHandler(context.Background(), "election-1", "arrondissement"); !errors.Is(err, domainerrors.ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
	if _, err := module.Handler.AggregateHandler(context.Background(), "election-404", ""); !errors.Is(err, domainerrors.ErrElectionNotFound) {
		t.Fatalf("expected ErrElectionNotFound, got %v", err)
	}
}

func TestAggregateEmptyElectionReturnsZeroBucket(t *testing.T) {
	module := resultaggregator.NewInMemoryModule(nil)
	module.Store.SetElection("election-1")

	resp, err := module.Handler.AggregateHandler(context.Background(), "election-1", "global")
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	if len(resp.Buckets) != 1 {
		t.Fatalf("expected one zero bucket, got %d", len(resp.Buckets))
	}
	bucket := resp.Buckets[0]
	if bucket.Voters != 0 || bucket.TalliesCounted != 0 || len(bucket.Candidates) != 0 {
		t.Fatalf("expected empty totals, got voters=%d counted=%d candidates=%d", bucket.Voters, bucket.TalliesCounted, len(bucket.Candidates))
	}
}

func TestProgressCountsReportedStations(t *testing.T) {
	module := resultaggregator.NewInMemoryModule(nil)
	module.Store.SetElection("election-1")
	module.Store.SetTallyFact(ports.TallyFact{
		TallyID:    "tally-1",
		StationID:  "station-1",
		ElectionID: "election-1",
		Registered: 100,
		Voters:     80,
		Validated:  false,
		Reported:   true,
	})
	module.Store.SetTallyFact(ports.TallyFact{
		TallyID:    "tally-2",
		StationID:  "station-2",
		ElectionID: "election-1",
		Registered: 100,
		Reported:   false,
	})

	resp, err := module.Handler.ProgressHandler(context.Background(), "election-1")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if resp.StationsTotal != 2 || resp.StationsReported != 1 {
		t.Fatalf("expected 1/2 stations reported, got %d/%d", resp.StationsReported, resp.StationsTotal)
	}
	if resp.Registered != 200 || resp.Voters != 80 {
		t.Fatalf("unexpected progress counts: registered=%d voters=%d", resp.Registered, resp.Voters)
	}
	if resp.ParticipationRate != 40 {
		t.Fatalf("expected 40%% provisional participation, got %f", resp.ParticipationRate)
	}
}
