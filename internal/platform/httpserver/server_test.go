package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ballotbox "scrutin/contexts/polling-operations/ballot-box"
	ballotports "scrutin/contexts/polling-operations/ballot-box/ports"
	stationlifecycle "scrutin/contexts/polling-operations/station-lifecycle"
	disputeresolver "scrutin/contexts/tabulation/dispute-resolver"
	resultaggregator "scrutin/contexts/tabulation/result-aggregator"
	tallyledger "scrutin/contexts/tabulation/tally-ledger"
)

func newTestServer() (*Server, ballotbox.Module) {
	ballots := ballotbox.NewInMemoryModule(nil)
	server := New(
		stationlifecycle.NewInMemoryModule(nil),
		ballots,
		tallyledger.NewInMemoryModule("SUPERVISOR", nil),
		resultaggregator.NewInMemoryModule(nil),
		disputeresolver.NewInMemoryModule(nil),
		nil,
		":0",
	)
	return server, ballots
}

func TestCastRouteCreatesBallot(t *testing.T) {
	server, ballots := newTestServer()
	ballots.Store.SetElection(ballotports.ElectionProjection{ElectionID: "election-1", Status: "running"})
	ballots.Store.SetStation(ballotports.StationProjection{
		StationID:  "station-1",
		ElectionID: "election-1",
		Status:     "open",
	})
	ballots.Store.SetTally("tally-1", "station-1", "election-1", false)
	ballots.Store.SetCandidateCount("tally-1", "candidacy-1", 0)

	enroll := httptest.NewRecorder()
	server.Handler().ServeHTTP(enroll, httptest.NewRequest(http.MethodPost, "/api/v1/rolls",
		strings.NewReader(`{"station_id":"station-1"}`)))
	if enroll.Code != http.StatusCreated {
		t.Fatalf("register roll returned %d: %s", enroll.Code, enroll.Body.String())
	}
	var roll struct {
		RollID string `json:"roll_id"`
	}
	if err := json.Unmarshal(enroll.Body.Bytes(), &roll); err != nil {
		t.Fatalf("decode roll response: %v", err)
	}
	addVoter := httptest.NewRecorder()
	server.Handler().ServeHTTP(addVoter, httptest.NewRequest(http.MethodPost, "/api/v1/rolls/"+roll.RollID+"/voters",
		strings.NewReader(`{"voter_number":"voter-1"}`)))
	if addVoter.Code != http.StatusCreated {
		t.Fatalf("add voter returned %d: %s", addVoter.Code, addVoter.Body.String())
	}

	cast := httptest.NewRecorder()
	server.Handler().ServeHTTP(cast, httptest.NewRequest(http.MethodPost, "/api/v1/cast",
		strings.NewReader(`{"election_id":"election-1","voter_number":"voter-1","station_id":"station-1","candidacy_id":"candidacy-1"}`)))
	if cast.Code != http.StatusOK {
		t.Fatalf("cast returned %d: %s", cast.Code, cast.Body.String())
	}

	again := httptest.NewRecorder()
	server.Handler().ServeHTTP(again, httptest.NewRequest(http.MethodPost, "/api/v1/cast",
		strings.NewReader(`{"election_id":"election-1","voter_number":"voter-1","station_id":"station-1","blank":true}`)))
	if again.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on double vote, got %d: %s", again.Code, again.Body.String())
	}
}

func TestCastRouteStatusCodes(t *testing.T) {
	server, ballots := newTestServer()
	ballots.Store.SetElection(ballotports.ElectionProjection{ElectionID: "election-1", Status: "running"})
	ballots.Store.SetStation(ballotports.StationProjection{
		StationID:  "station-closed",
		ElectionID: "election-1",
		Status:     "closed",
	})
	ballots.Store.SetStation(ballotports.StationProjection{
		StationID:  "station-no-tally",
		ElectionID: "election-1",
		Status:     "open",
	})

	enroll := httptest.NewRecorder()
	server.Handler().ServeHTTP(enroll, httptest.NewRequest(http.MethodPost, "/api/v1/rolls",
		strings.NewReader(`{"station_id":"station-closed"}`)))
	if enroll.Code != http.StatusCreated {
		t.Fatalf("register roll returned %d: %s", enroll.Code, enroll.Body.String())
	}
	var roll struct {
		RollID string `json:"roll_id"`
	}
	if err := json.Unmarshal(enroll.Body.Bytes(), &roll); err != nil {
		t.Fatalf("decode roll response: %v", err)
	}
	addVoter := httptest.NewRecorder()
	server.Handler().ServeHTTP(addVoter, httptest.NewRequest(http.MethodPost, "/api/v1/rolls/"+roll.RollID+"/voters",
		strings.NewReader(`{"voter_number":"voter-1"}`)))
	if addVoter.Code != http.StatusCreated {
		t.Fatalf("add voter returned %d: %s", addVoter.Code, addVoter.Body.String())
	}

	closed := httptest.NewRecorder()
	server.Handler().ServeHTTP(closed, httptest.NewRequest(http.MethodPost, "/api/v1/cast",
		strings.NewReader(`{"election_id":"election-1","voter_number":"voter-1","station_id":"station-closed","blank":true}`)))
	if closed.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for closed station, got %d: %s", closed.Code, closed.Body.String())
	}

	enroll2 := httptest.NewRecorder()
	server.Handler().ServeHTTP(enroll2, httptest.NewRequest(http.MethodPost, "/api/v1/rolls",
		strings.NewReader(`{"station_id":"station-no-tally"}`)))
	if enroll2.Code != http.StatusCreated {
		t.Fatalf("register roll returned %d: %s", enroll2.Code, enroll2.Body.String())
	}
	var roll2 struct {
		RollID string `json:"roll_id"`
	}
	if err := json.Unmarshal(enroll2.Body.Bytes(), &roll2); err != nil {
		t.Fatalf("decode roll response: %v", err)
	}
	addVoter2 := httptest.NewRecorder()
	server.Handler().ServeHTTP(addVoter2, httptest.NewRequest(http.MethodPost, "/api/v1/rolls/"+roll2.RollID+"/voters",
		strings.NewReader(`{"voter_number":"voter-2"}`)))
	if addVoter2.Code != http.StatusCreated {
		t.Fatalf("add voter returned %d: %s", addVoter2.Code, addVoter2.Body.String())
	}

	noTally := httptest.NewRecorder()
	server.Handler().ServeHTTP(noTally, httptest.NewRequest(http.MethodPost, "/api/v1/cast",
		strings.NewReader(`{"election_id":"election-1","voter_number":"voter-2","station_id":"station-no-tally","blank":true}`)))
	if noTally.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no open tally exists, got %d: %s", noTally.Code, noTally.Body.String())
	}
}

func TestValidateRouteRequiresUserHeader(t *testing.T) {
	server, _ := newTestServer()

	res := httptest.NewRecorder()
	server.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/api/v1/tallies/tally-1/validate",
		strings.NewReader(`{}`)))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without X-User-Id, got %d", res.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tallies/tally-404/validate", strings.NewReader(`{}`))
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Role", "SUPERVISOR")
	missing := httptest.NewRecorder()
	server.Handler().ServeHTTP(missing, req)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing tally, got %d: %s", missing.Code, missing.Body.String())
	}
}

func TestAggregateRouteValidatesLevel(t *testing.T) {
	server, _ := newTestServer()

	res := httptest.NewRecorder()
	server.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet,
		"/api/v1/results/aggregate?election_id=election-404", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown election, got %d", res.Code)
	}
}
