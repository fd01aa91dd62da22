package unit

import (
	"context"
	"errors"
	"testing"

	stationlifecycle "scrutin/contexts/polling-operations/station-lifecycle"
	domainerrors "scrutin/contexts/polling-operations/station-lifecycle/domain/errors"
	httptransport "scrutin/contexts/polling-operations/station-lifecycle/transport/http"
)

func TestStartElectionSeedsTalliesForEveryStation(t *testing.T) {
	module := stationlifecycle.NewInMemoryModule(nil)

	election, err := module.Handler.ScheduleElectionHandler(context.Background(), httptransport.ScheduleElectionRequest{
		Name: "Presidentielle 2026",
	})
	if err != nil {
		t.Fatalf("schedule election failed: %v", err)
	}

	for _, name := range []string{"Cotonou Centre", "Porto-Novo Est"} {
		if _, err := module.Handler.RegisterStationHandler(context.Background(), httptransport.RegisterStationRequest{
			ElectionID:      election.ElectionID,
			Name:            name,
			CommuneID:       "commune-1",
			RegisteredCount: 150,
		}); err != nil {
			t.Fatalf("register station %s failed: %v", name, err)
		}
	}
	module.Store.SetCandidacy("candidacy-1", election.ElectionID, true)
	module.Store.SetCandidacy("candidacy-2", election.ElectionID, true)

	started, err := module.Handler.StartElectionHandler(context.Background(), election.ElectionID)
	if err != nil {
		t.Fatalf("start election failed: %v", err)
	}
	if started.StationsReady != 2 {
		t.Fatalf("expected 2 stations ready, got %d", started.StationsReady)
	}

	stations, err := module.Handler.ElectionStationsHandler(context.Background(), election.ElectionID)
	if err != nil {
		t.Fatalf("list stations failed: %v", err)
	}
	for _, station := range stations.Items {
		if _, validated, ok := module.Store.StationTally(station.StationID); !ok || validated {
			t.Fatalf("expected an open tally for station %s", station.StationID)
		}
	}

	if _, err := module.Handler.StartElectionHandler(context.Background(), election.ElectionID); !errors.Is(err, domainerrors.ErrElectionNotPlanned) {
		t.Fatalf("expected ErrElectionNotPlanned on second start, got %v", err)
	}
}

func TestOpenStationRequiresRunningElection(t *testing.T) {
	module := stationlifecycle.NewInMemoryModule(nil)

	election, err := module.Handler.ScheduleElectionHandler(context.Background(), httptransport.ScheduleElectionRequest{
		Name: "Legislatives 2026",
	})
	if err != nil {
		t.Fatalf("schedule election failed: %v", err)
	}
	station, err := module.Handler.RegisterStationHandler(context.Background(), httptransport.RegisterStationRequest{
		ElectionID:      election.ElectionID,
		Name:            "Parakou Nord",
		CommuneID:       "commune-8",
		RegisteredCount: 90,
	})
	if err != nil {
		t.Fatalf("register station failed: %v", err)
	}

	err = module.Handler.OpenStationHandler(context.Background(), station.StationID, httptransport.OpenStationRequest{
		ElectionID: election.ElectionID,
	})
	if !errors.Is(err, domainerrors.ErrElectionNotRunning) {
		t.Fatalf("expected ErrElectionNotRunning, got %v", err)
	}
}

func TestCloseStationComputesValidCountAndStoresMinutesRef(t *testing.T) {
	module := stationlifecycle.NewInMemoryModule(nil)
	election, station := runningStation(t, module, 150)

	closed, err := module.Handler.CloseStationHandler(context.Background(), station, httptransport.CloseStationRequest{
		ElectionID:   election,
		Voters:       100,
		Spoiled:      3,
		Blank:        5,
		Observations: "RAS",
	})
	if err != nil {
		t.Fatalf("close station failed: %v", err)
	}
	if closed.ValidCount != 92 {
		t.Fatalf("expected valid count 92, got %d", closed.ValidCount)
	}
	if closed.MinutesRef == "" {
		t.Fatalf("expected a minutes reference")
	}

	voters, spoiled, blank, valid, ok := module.Store.FinalCounts(station)
	if !ok {
		t.Fatalf("expected frozen final counts for station %s", station)
	}
	if voters != 100 || spoiled != 3 || blank != 5 || valid != 92 {
		t.Fatalf("unexpected final counts: voters=%d spoiled=%d blank=%d valid=%d", voters, spoiled, blank, valid)
	}

	status, err := module.Handler.StationStatusHandler(context.Background(), station)
	if err != nil {
		t.Fatalf("station status failed: %v", err)
	}
	if status.Status != "closed" {
		t.Fatalf("expected closed station, got %s", status.Status)
	}
}

func TestCloseStationRejectsVotersAboveRegisteredCount(t *testing.T) {
	module := stationlifecycle.NewInMemoryModule(nil)
	election, station := runningStation(t, module, 150)

	_, err := module.Handler.CloseStationHandler(context.Background(), station, httptransport.CloseStationRequest{
		ElectionID: election,
		Voters:     200,
		Spoiled:    1,
		Blank:      1,
	})
	if !errors.Is(err, domainerrors.ErrVotersExceedRoll) {
		t.Fatalf("expected ErrVotersExceedRoll, got %v", err)
	}

	status, err := module.Handler.StationStatusHandler(context.Background(), station)
	if err != nil {
		t.Fatalf("station status failed: %v", err)
	}
	if status.Status != "open" {
		t.Fatalf("expected station to stay open after rejected counts, got %s", status.Status)
	}
}

func TestCloseStationRejectsValidCountBelowCountedVotes(t *testing.T) {
	module := stationlifecycle.NewInMemoryModule(nil)
	election, station := runningStation(t, module, 150)

	tallyID, _, ok := module.Store.StationTally(station)
	if !ok {
		t.Fatalf("expected a seeded tally for station %s", station)
	}
	module.Store.SetCandidateVotes(tallyID, "candidacy-1", 40)

	// 30 voters with 5 spoiled and 5 blank freezes valid_count at 20,
	// below the 40 votes already accumulated.
	_, err := module.Handler.CloseStationHandler(context.Background(), station, httptransport.CloseStationRequest{
		ElectionID: election,
		Voters:     30,
		Spoiled:    5,
		Blank:      5,
	})
	if !errors.Is(err, domainerrors.ErrInvalidCounts) {
		t.Fatalf("expected ErrInvalidCounts, got %v", err)
	}

	status, err := module.Handler.StationStatusHandler(context.Background(), station)
	if err != nil {
		t.Fatalf("station status failed: %v", err)
	}
	if status.Status != "open" {
		t.Fatalf("expected station to stay open after rejected counts, got %s", status.Status)
	}

	closed, err := module.Handler.CloseStationHandler(context.Background(), station, httptransport.CloseStationRequest{
		ElectionID: election,
		Voters:     50,
		Spoiled:    5,
		Blank:      5,
	})
	if err != nil {
		t.Fatalf("close with sufficient valid_count failed: %v", err)
	}
	if closed.ValidCount != 40 {
		t.Fatalf("expected valid_count 40, got %d", closed.ValidCount)
	}
}

func TestCloseStationRejectsSpoiledPlusBlankAboveVoters(t *testing.T) {
	module := stationlifecycle.NewInMemoryModule(nil)
	election, station := runningStation(t, module, 150)

	_, err := module.Handler.CloseStationHandler(context.Background(), station, httptransport.CloseStationRequest{
		ElectionID: election,
		Voters:     10,
		Spoiled:    6,
		Blank:      5,
	})
	if !errors.Is(err, domainerrors.ErrInvalidCounts) {
		t.Fatalf("expected ErrInvalidCounts, got %v", err)
	}
}

func TestCancelledElectionIsTerminal(t *testing.T) {
	module := stationlifecycle.NewInMemoryModule(nil)

	election, err := module.Handler.ScheduleElectionHandler(context.Background(), httptransport.ScheduleElectionRequest{
		Name: "Communales 2026",
	})
	if err != nil {
		t.Fatalf("schedule election failed: %v", err)
	}
	if err := module.Handler.CancelElectionHandler(context.Background(), election.ElectionID, httptransport.CancelElectionRequest{
		Reason: "decision de la cour",
	}); err != nil {
		t.Fatalf("cancel election failed: %v", err)
	}

	if _, err := module.Handler.StartElectionHandler(context.Background(), election.ElectionID); !errors.Is(err, domainerrors.ErrElectionNotPlanned) {
		t.Fatalf("expected ErrElectionNotPlanned after cancel, got %v", err)
	}
	if err := module.Handler.FinishElectionHandler(context.Background(), election.ElectionID); !errors.Is(err, domainerrors.ErrElectionNotRunning) {
		t.Fatalf("expected ErrElectionNotRunning after cancel, got %v", err)
	}
}

func runningStation(t *testing.T, module stationlifecycle.Module, registered int) (electionID string, stationID string) {
	t.Helper()

	election, err := module.Handler.ScheduleElectionHandler(context.Background(), httptransport.ScheduleElectionRequest{
		Name: "Scrutin test",
	})
	if err != nil {
		t.Fatalf("schedule election failed: %v", err)
	}
	station, err := module.Handler.RegisterStationHandler(context.Background(), httptransport.RegisterStationRequest{
		ElectionID:      election.ElectionID,
		Name:            "Bureau 001",
		CommuneID:       "commune-1",
		RegisteredCount: registered,
	})
	if err != nil {
		t.Fatalf("register station failed: %v", err)
	}
	module.Store.SetCandidacy("candidacy-1", election.ElectionID, true)

	if _, err := module.Handler.StartElectionHandler(context.Background(), election.ElectionID); err != nil {
		t.Fatalf("start election failed: %v", err)
	}
	if err := module.Handler.OpenStationHandler(context.Background(), station.StationID, httptransport.OpenStationRequest{
		ElectionID: election.ElectionID,
	}); err != nil {
		t.Fatalf("open station failed: %v", err)
	}
	return election.ElectionID, station.StationID
}
