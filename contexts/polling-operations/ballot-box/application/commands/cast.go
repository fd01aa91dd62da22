package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "scrutin/contexts/polling-operations/ballot-box/application"
	"scrutin/contexts/polling-operations/ballot-box/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/ballot-box/domain/errors"
	"scrutin/contexts/polling-operations/ballot-box/ports"
)

// CastBallotCommand is the write-model input for a single ballot cast. The
// election id is always explicit; nothing in the cast path assumes a single
// ambient running election.
type CastBallotCommand struct {
	ElectionID  string
	VoterNumber string
	StationID   string
	CandidacyID string
	Blank       bool
	SourceIP    string
}

type CastBallotResult struct {
	LogEntryID string
	Kind       entities.BallotKind
	CastAt     time.Time
}

// CastUseCase orchestrates the ballot-cast transaction: election and station
// preconditions, roll eligibility, the atomic tally-and-roll write, and the
// audit event.
type CastUseCase struct {
	Ballots ports.BallotRepository
	Roll    ports.RollRepository
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// CastBallot runs the five-step cast transaction. Steps one to three are
// fail-fast precondition reads; the write itself happens in a single
// ApplyCast call so a failure at any point leaves no partial state.
func (uc CastUseCase) CastBallot(ctx context.Context, cmd CastBallotCommand) (CastBallotResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	electionID := strings.TrimSpace(cmd.ElectionID)
	voterNumber := strings.TrimSpace(cmd.VoterNumber)
	stationID := strings.TrimSpace(cmd.StationID)
	candidacyID := strings.TrimSpace(cmd.CandidacyID)

	logger.Info("ballot cast started",
		"event", "ballot_cast_started",
		"module", "polling-operations/ballot-box",
		"layer", "application",
		"election_id", electionID,
		"station_id", stationID,
		"blank", cmd.Blank,
	)

	if electionID == "" || voterNumber == "" || stationID == "" {
		return CastBallotResult{}, domainerrors.ErrInvalidCastInput
	}
	// Exactly one of candidacy id or blank flag must be present.
	if !cmd.Blank && candidacyID == "" {
		return CastBallotResult{}, domainerrors.ErrInvalidCastInput
	}
	if cmd.Blank && candidacyID != "" {
		return CastBallotResult{}, domainerrors.ErrInvalidCastInput
	}

	election, err := uc.Ballots.GetElection(ctx, electionID)
	if err != nil {
		return CastBallotResult{}, err
	}
	if !strings.EqualFold(election.Status, "running") {
		logger.Warn("ballot cast rejected, election not running",
			"event", "ballot_cast_election_not_running",
			"module", "polling-operations/ballot-box",
			"layer", "application",
			"election_id", electionID,
			"election_status", election.Status,
		)
		return CastBallotResult{}, domainerrors.ErrElectionNotRunning
	}

	station, err := uc.Ballots.GetStation(ctx, stationID)
	if err != nil {
		return CastBallotResult{}, err
	}
	if !strings.EqualFold(station.Status, "open") {
		logger.Warn("ballot cast rejected, station not open",
			"event", "ballot_cast_station_not_open",
			"module", "polling-operations/ballot-box",
			"layer", "application",
			"station_id", stationID,
			"station_status", station.Status,
		)
		return CastBallotResult{}, domainerrors.ErrStationNotOpen
	}

	entry, err := uc.Roll.GetEntry(ctx, voterNumber)
	if err != nil {
		return CastBallotResult{}, err
	}
	if entry.StationID != stationID {
		return CastBallotResult{}, domainerrors.ErrWrongStation
	}
	if entry.HasVoted {
		return CastBallotResult{}, domainerrors.ErrAlreadyVoted
	}

	kind := entities.BallotKindCandidate
	if cmd.Blank {
		kind = entities.BallotKindBlank
	}

	now := uc.now()
	logEntryID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastBallotResult{}, err
	}

	record := ports.CastRecord{
		ElectionID:  electionID,
		StationID:   stationID,
		VoterNumber: voterNumber,
		CandidacyID: candidacyID,
		Kind:        kind,
		SourceIP:    strings.TrimSpace(cmd.SourceIP),
		LogEntryID:  logEntryID,
		CastAt:      now,
	}
	// The pre-checks above are advisory; ApplyCast re-verifies the has_voted
	// flag and the open tally under the transaction, so a concurrent cast for
	// the same voter number ends with exactly one success.
	if err := uc.Ballots.ApplyCast(ctx, record); err != nil {
		logger.Warn("ballot cast apply failed",
			"event", "ballot_cast_apply_failed",
			"module", "polling-operations/ballot-box",
			"layer", "application",
			"station_id", stationID,
			"error", err.Error(),
		)
		return CastBallotResult{}, err
	}

	// The cast is committed at this point; a failed outbox append must not
	// surface as a failed vote.
	if err := uc.appendCastEvent(ctx, record); err != nil {
		logger.Warn("ballot cast event append failed",
			"event", "ballot_cast_event_append_failed",
			"module", "polling-operations/ballot-box",
			"layer", "application",
			"station_id", stationID,
			"log_entry_id", logEntryID,
			"error", err.Error(),
		)
	}

	logger.Info("ballot cast recorded",
		"event", "ballot_cast_recorded",
		"module", "polling-operations/ballot-box",
		"layer", "application",
		"election_id", electionID,
		"station_id", stationID,
		"log_entry_id", logEntryID,
		"kind", string(kind),
	)
	return CastBallotResult{
		LogEntryID: logEntryID,
		Kind:       kind,
		CastAt:     now,
	}, nil
}

func (uc CastUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc CastUseCase) appendCastEvent(ctx context.Context, record ports.CastRecord) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newBallotEnvelope(eventID, "ballot.cast", record.StationID, record.CastAt, map[string]any{
		"election_id":  record.ElectionID,
		"station_id":   record.StationID,
		"kind":         string(record.Kind),
		"log_entry_id": record.LogEntryID,
		"occurred_at":  record.CastAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
