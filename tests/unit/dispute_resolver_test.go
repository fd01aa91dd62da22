package unit

import (
	"context"
	"errors"
	"testing"

	disputeresolver "scrutin/contexts/tabulation/dispute-resolver"
	domainerrors "scrutin/contexts/tabulation/dispute-resolver/domain/errors"
	disputehttp "scrutin/contexts/tabulation/dispute-resolver/transport/http"
	resultaggregator "scrutin/contexts/tabulation/result-aggregator"
	aggregatorports "scrutin/contexts/tabulation/result-aggregator/ports"
)

func TestSubmitDisputeRejectsDuplicatePendingTriple(t *testing.T) {
	module := disputeresolver.NewInMemoryModule(nil)
	module.Store.SetTally("tally-1")

	submit := func() (disputehttp.DisputeResponse, error) {
		return module.Handler.SubmitDisputeHandler(context.Background(), disputehttp.SubmitDisputeRequest{
			TallyID:          "tally-1",
			CandidacyID:      "candidacy-1",
			RepresentativeID: "rep-1",
			Motif:            "bourrage d'urne",
		})
	}
	first, err := submit()
	if err != nil {
		t.Fatalf("submit dispute failed: %v", err)
	}
	if first.Status != "pending" {
		t.Fatalf("expected pending dispute, got %s", first.Status)
	}

	if _, err := submit(); !errors.Is(err, domainerrors.ErrDuplicateDispute) {
		t.Fatalf("expected ErrDuplicateDispute, got %v", err)
	}

	// A different representative may still contest the same tally.
	if _, err := module.Handler.SubmitDisputeHandler(context.Background(), disputehttp.SubmitDisputeRequest{
		TallyID:          "tally-1",
		CandidacyID:      "candidacy-1",
		RepresentativeID: "rep-2",
		Motif:            "proces-verbal illisible",
	}); err != nil {
		t.Fatalf("second representative submit failed: %v", err)
	}
}

func TestSubmitDisputeRequiresExistingTally(t *testing.T) {
	module := disputeresolver.NewInMemoryModule(nil)

	_, err := module.Handler.SubmitDisputeHandler(context.Background(), disputehttp.SubmitDisputeRequest{
		TallyID:          "tally-404",
		CandidacyID:      "candidacy-1",
		RepresentativeID: "rep-1",
		Motif:            "motif",
	})
	if !errors.Is(err, domainerrors.ErrTallyNotFound) {
		t.Fatalf("expected ErrTallyNotFound, got %v", err)
	}
}

func TestResolveDisputeOnceOnly(t *testing.T) {
	module := disputeresolver.NewInMemoryModule(nil)
	module.Store.SetTally("tally-1")

	dispute, err := module.Handler.SubmitDisputeHandler(context.Background(), disputehttp.SubmitDisputeRequest{
		TallyID:          "tally-1",
		CandidacyID:      "candidacy-1",
		RepresentativeID: "rep-1",
		Motif:            "motif",
	})
	if err != nil {
		t.Fatalf("submit dispute failed: %v", err)
	}

	resolved, err := module.Handler.ResolveDisputeHandler(context.Background(), dispute.DisputeID, disputehttp.ResolveDisputeRequest{
		Decision: "rejected",
		Comment:  "recomptage conforme",
	})
	if err != nil {
		t.Fatalf("resolve dispute failed: %v", err)
	}
	if resolved.Status != "rejected" || resolved.ResolvedAt == "" {
		t.Fatalf("expected rejected resolution with timestamp, got status=%s resolved_at=%q", resolved.Status, resolved.ResolvedAt)
	}

	_, err = module.Handler.ResolveDisputeHandler(context.Background(), dispute.DisputeID, disputehttp.ResolveDisputeRequest{
		Decision: "accepted",
	})
	if !errors.Is(err, domainerrors.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}

	if _, err := module.Handler.ResolveDisputeHandler(context.Background(), dispute.DisputeID, disputehttp.ResolveDisputeRequest{
		Decision: "annulled",
	}); !errors.Is(err, domainerrors.ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
}

func TestAcceptedDisputeRemovesTallyFromAggregation(t *testing.T) {
	aggregates := resultaggregator.NewInMemoryModule(nil)
	aggregates.Store.SetElection("election-1")
	aggregates.Store.SetTallyFact(aggregatorports.TallyFact{
		TallyID:    "tally-1",
		StationID:  "station-1",
		ElectionID: "election-1",
		Registered: 100,
		Voters:     30,
		Valid:      30,
		Validated:  true,
		Reported:   true,
	})
	aggregates.Store.SetTallyFact(aggregatorports.TallyFact{
		TallyID:    "tally-2",
		StationID:  "station-2",
		ElectionID: "election-1",
		Registered: 100,
		Voters:     10,
		Valid:      10,
		Validated:  true,
		Reported:   true,
	})

	disputes := disputeresolver.NewInMemoryModule(nil)
	disputes.Store.SetTally("tally-1")
	disputes.Store.OnAccept(func(tallyID string) {
		aggregates.Store.SetValidated(tallyID, false)
	})

	before, err := aggregates.Handler.AggregateHandler(context.Background(), "election-1", "")
	if err != nil {
		t.Fatalf("aggregate before dispute failed: %v", err)
	}
	if before.Buckets[0].Voters != 40 {
		t.Fatalf("expected 40 voters before dispute, got %d", before.Buckets[0].Voters)
	}

	dispute, err := disputes.Handler.SubmitDisputeHandler(context.Background(), disputehttp.SubmitDisputeRequest{
		TallyID:          "tally-1",
		CandidacyID:      "candidacy-1",
		RepresentativeID: "rep-1",
		Motif:            "irregularite grave",
	})
	if err != nil {
		t.Fatalf("submit dispute failed: %v", err)
	}
	if _, err := disputes.Handler.ResolveDisputeHandler(context.Background(), dispute.DisputeID, disputehttp.ResolveDisputeRequest{
		Decision: "accepted",
		Comment:  "tally annule",
	}); err != nil {
		t.Fatalf("resolve dispute failed: %v", err)
	}

	after, err := aggregates.Handler.AggregateHandler(context.Background(), "election-1", "")
	if err != nil {
		t.Fatalf("aggregate after dispute failed: %v", err)
	}
	if after.Buckets[0].Voters != 10 || after.Buckets[0].TalliesCounted != 1 {
		t.Fatalf("expected invalidated tally out of totals, got voters=%d counted=%d", after.Buckets[0].Voters, after.Buckets[0].TalliesCounted)
	}
}

func TestDisputeHistoryFiltersByStatus(t *testing.T) {
	module := disputeresolver.NewInMemoryModule(nil)
	module.Store.SetTally("tally-1")
	module.Store.SetTally("tally-2")

	first, err := module.Handler.SubmitDisputeHandler(context.Background(), disputehttp.SubmitDisputeRequest{
		TallyID:          "tally-1",
		CandidacyID:      "candidacy-1",
		RepresentativeID: "rep-1",
		Motif:            "motif un",
	})
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := module.Handler.SubmitDisputeHandler(context.Background(), disputehttp.SubmitDisputeRequest{
		TallyID:          "tally-2",
		CandidacyID:      "candidacy-2",
		RepresentativeID: "rep-2",
		Motif:            "motif deux",
	}); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}
	if _, err := module.Handler.ResolveDisputeHandler(context.Background(), first.DisputeID, disputehttp.ResolveDisputeRequest{
		Decision: "rejected",
	}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	pending, err := module.Handler.DisputeHistoryHandler(context.Background(), "pending", "", "")
	if err != nil {
		t.Fatalf("history pending failed: %v", err)
	}
	if len(pending.Disputes) != 1 || pending.Disputes[0].TallyID != "tally-2" {
		t.Fatalf("expected the tally-2 dispute pending, got %d entries", len(pending.Disputes))
	}

	rejected, err := module.Handler.DisputeHistoryHandler(context.Background(), "rejected", "", "")
	if err != nil {
		t.Fatalf("history rejected failed: %v", err)
	}
	if len(rejected.Disputes) != 1 || rejected.Disputes[0].DisputeID != first.DisputeID {
		t.Fatalf("expected the resolved dispute, got %d entries", len(rejected.Disputes))
	}

	byTally, err := module.Handler.TallyDisputesHandler(context.Background(), "tally-1")
	if err != nil {
		t.Fatalf("list by tally failed: %v", err)
	}
	if len(byTally.Disputes) != 1 {
		t.Fatalf("expected 1 dispute on tally-1, got %d", len(byTally.Disputes))
	}
}
