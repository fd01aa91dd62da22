package unit

import (
	"context"
	"errors"
	"testing"

	ballotbox "scrutin/contexts/polling-operations/ballot-box"
	ballotworkers "scrutin/contexts/polling-operations/ballot-box/application/workers"
	ballotports "scrutin/contexts/polling-operations/ballot-box/ports"
	httptransport "scrutin/contexts/polling-operations/ballot-box/transport/http"
	disputeresolver "scrutin/contexts/tabulation/dispute-resolver"
	disputeworkers "scrutin/contexts/tabulation/dispute-resolver/application/workers"
	disputeports "scrutin/contexts/tabulation/dispute-resolver/ports"
	disputehttp "scrutin/contexts/tabulation/dispute-resolver/transport/http"
)

type ballotStubPublisher struct {
	published []ballotports.EventEnvelope
	fail      bool
}

func (p *ballotStubPublisher) Publish(_ context.Context, _ string, event ballotports.EventEnvelope) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

type disputeStubPublisher struct {
	published []disputeports.EventEnvelope
}

func (p *disputeStubPublisher) Publish(_ context.Context, _ string, event disputeports.EventEnvelope) error {
	p.published = append(p.published, event)
	return nil
}

func TestBallotOutboxRelayPublishesCastEvents(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1"})
	enrollVoters(t, module, "station-1", "voter-1")

	if _, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		CandidacyID: "candidacy-1",
	}); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	publisher := &ballotStubPublisher{}
	relay := ballotworkers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	event := publisher.published[0]
	if event.EventType != "ballot.cast" {
		t.Fatalf("expected ballot.cast event, got %s", event.EventType)
	}
	if event.PartitionKey != "station-1" {
		t.Fatalf("expected partition by station, got %s", event.PartitionKey)
	}

	// Published rows stay published; a second cycle finds nothing.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected no republish, got %d events", len(publisher.published))
	}
}

func TestBallotOutboxRelayKeepsRowsPendingOnBrokerFailure(t *testing.T) {
	module := ballotbox.NewInMemoryModule(nil)
	seedOpenStation(module, "election-1", "station-1", "tally-1", []string{"candidacy-1"})
	enrollVoters(t, module, "station-1", "voter-1")

	if _, err := module.Handler.CastBallotHandler(context.Background(), "election-1", "10.0.0.1", httptransport.CastBallotRequest{
		VoterNumber: "voter-1",
		StationID:   "station-1",
		CandidacyID: "candidacy-1",
	}); err != nil {
		t.Fatalf("cast failed: %v", err)
	}

	publisher := &ballotStubPublisher{fail: true}
	relay := ballotworkers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay error on broker failure")
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending for retry, got %d", len(pending))
	}
}

func TestDisputeOutboxRelayPublishesResolutions(t *testing.T) {
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
	if _, err := module.Handler.ResolveDisputeHandler(context.Background(), dispute.DisputeID, disputehttp.ResolveDisputeRequest{
		Decision: "accepted",
	}); err != nil {
		t.Fatalf("resolve dispute failed: %v", err)
	}

	publisher := &disputeStubPublisher{}
	relay := disputeworkers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}
	if publisher.published[0].EventType != "dispute.resolved" {
		t.Fatalf("expected dispute.resolved event, got %s", publisher.published[0].EventType)
	}
	if publisher.published[0].PartitionKey != "tally-1" {
		t.Fatalf("expected partition by tally, got %s", publisher.published[0].PartitionKey)
	}
}
