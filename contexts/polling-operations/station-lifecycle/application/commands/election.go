package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "scrutin/contexts/polling-operations/station-lifecycle/application"
	"scrutin/contexts/polling-operations/station-lifecycle/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/station-lifecycle/domain/errors"
	"scrutin/contexts/polling-operations/station-lifecycle/ports"
)

type ScheduleElectionCommand struct {
	Name         string
	ScheduledFor time.Time
}

type CancelElectionCommand struct {
	ElectionID string
	Reason     string
}

type StartElectionResult struct {
	ElectionID    string
	StartedAt     time.Time
	StationsReady int
}

// ElectionUseCase drives the election state machine. Transitions are applied
// as conditional updates, so a lost race surfaces as a state error rather
// than a silent double transition.
type ElectionUseCase struct {
	Elections ports.ElectionRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ElectionUseCase) ScheduleElection(ctx context.Context, cmd ScheduleElectionCommand) (entities.Election, error) {
	logger := application.ResolveLogger(uc.Logger)

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return entities.Election{}, domainerrors.ErrInvalidElectionInput
	}

	electionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Election{}, err
	}
	now := uc.now()
	election := entities.Election{
		ElectionID:   electionID,
		Name:         name,
		Status:       entities.ElectionStatusPlanned,
		ScheduledFor: cmd.ScheduledFor.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Elections.SaveElection(ctx, election); err != nil {
		return entities.Election{}, err
	}

	logger.Info("election scheduled",
		"event", "election_scheduled",
		"module", "polling-operations/station-lifecycle",
		"layer", "application",
		"election_id", electionID,
	)
	return election, nil
}

// StartElection moves a planned election to running and seeds the zero
// tallies the ballot box will increment. Seeding and the transition commit
// together: a half-started election never exists.
func (uc ElectionUseCase) StartElection(ctx context.Context, electionID string) (StartElectionResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return StartElectionResult{}, domainerrors.ErrInvalidElectionInput
	}

	startedAt := uc.now()
	stations, err := uc.Elections.ApplyStart(ctx, electionID, startedAt)
	if err != nil {
		logger.Warn("election start rejected",
			"event", "election_start_rejected",
			"module", "polling-operations/station-lifecycle",
			"layer", "application",
			"election_id", electionID,
			"error", err.Error(),
		)
		return StartElectionResult{}, err
	}

	logger.Info("election started",
		"event", "election_started",
		"module", "polling-operations/station-lifecycle",
		"layer", "application",
		"election_id", electionID,
		"stations_ready", stations,
	)
	return StartElectionResult{
		ElectionID:    electionID,
		StartedAt:     startedAt,
		StationsReady: stations,
	}, nil
}

func (uc ElectionUseCase) FinishElection(ctx context.Context, electionID string) error {
	logger := application.ResolveLogger(uc.Logger)

	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return domainerrors.ErrInvalidElectionInput
	}
	if err := uc.Elections.ApplyFinish(ctx, electionID, uc.now()); err != nil {
		return err
	}

	logger.Info("election finished",
		"event", "election_finished",
		"module", "polling-operations/station-lifecycle",
		"layer", "application",
		"election_id", electionID,
	)
	return nil
}

func (uc ElectionUseCase) CancelElection(ctx context.Context, cmd CancelElectionCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	electionID := strings.TrimSpace(cmd.ElectionID)
	if electionID == "" {
		return domainerrors.ErrInvalidElectionInput
	}
	if err := uc.Elections.ApplyCancel(ctx, electionID, strings.TrimSpace(cmd.Reason), uc.now()); err != nil {
		return err
	}

	logger.Info("election cancelled",
		"event", "election_cancelled",
		"module", "polling-operations/station-lifecycle",
		"layer", "application",
		"election_id", electionID,
	)
	return nil
}

func (uc ElectionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
