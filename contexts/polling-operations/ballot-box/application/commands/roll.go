package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "scrutin/contexts/polling-operations/ballot-box/application"
	"scrutin/contexts/polling-operations/ballot-box/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/ballot-box/domain/errors"
	"scrutin/contexts/polling-operations/ballot-box/ports"
)

type RegisterRollCommand struct {
	StationID string
	Code      string
}

type AddVoterCommand struct {
	RollID      string
	VoterNumber string
}

// RollUseCase manages roll creation and enrollment. Rolls are append-mostly:
// an entry whose voter has voted can never be removed, and a station keeps a
// single roll for its lifetime.
type RollUseCase struct {
	Roll    ports.RollRepository
	Ballots ports.BallotRepository
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (uc RollUseCase) RegisterRoll(ctx context.Context, cmd RegisterRollCommand) (entities.VoterRoll, error) {
	logger := application.ResolveLogger(uc.Logger)

	stationID := strings.TrimSpace(cmd.StationID)
	if stationID == "" {
		return entities.VoterRoll{}, domainerrors.ErrInvalidRollInput
	}
	if _, err := uc.Ballots.GetStation(ctx, stationID); err != nil {
		return entities.VoterRoll{}, err
	}
	if _, found, err := uc.Roll.GetRollByStation(ctx, stationID); err != nil {
		return entities.VoterRoll{}, err
	} else if found {
		return entities.VoterRoll{}, domainerrors.ErrRollExists
	}

	rollID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VoterRoll{}, err
	}
	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		code = "ROLL-" + strings.ToUpper(strings.ReplaceAll(rollID, "-", "")[:8])
	}

	roll := entities.VoterRoll{
		RollID:    rollID,
		StationID: stationID,
		Code:      code,
		CreatedAt: uc.now(),
	}
	if err := uc.Roll.SaveRoll(ctx, roll); err != nil {
		return entities.VoterRoll{}, err
	}

	logger.Info("voter roll registered",
		"event", "roll_registered",
		"module", "polling-operations/ballot-box",
		"layer", "application",
		"roll_id", roll.RollID,
		"station_id", stationID,
		"code", code,
	)
	return roll, nil
}

// AddVoter enrolls a voter on a roll. The voter-number uniqueness rule makes
// a voter belong to at most one roll election-wide; the repository surfaces
// the storage-level uniqueness backstop as ErrVoterEnrolled.
func (uc RollUseCase) AddVoter(ctx context.Context, cmd AddVoterCommand) (entities.RollEntry, error) {
	logger := application.ResolveLogger(uc.Logger)

	rollID := strings.TrimSpace(cmd.RollID)
	voterNumber := strings.TrimSpace(cmd.VoterNumber)
	if rollID == "" || voterNumber == "" {
		return entities.RollEntry{}, domainerrors.ErrInvalidRollInput
	}

	roll, err := uc.Roll.GetRoll(ctx, rollID)
	if err != nil {
		return entities.RollEntry{}, err
	}
	if _, err := uc.Roll.GetEntry(ctx, voterNumber); err == nil {
		return entities.RollEntry{}, domainerrors.ErrVoterEnrolled
	} else if !errors.Is(err, domainerrors.ErrVoterNotFound) {
		return entities.RollEntry{}, err
	}

	now := uc.now()
	entry := entities.RollEntry{
		VoterNumber: voterNumber,
		RollID:      roll.RollID,
		StationID:   roll.StationID,
		HasVoted:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Roll.AddEntry(ctx, entry); err != nil {
		return entities.RollEntry{}, err
	}

	logger.Info("voter enrolled",
		"event", "roll_voter_enrolled",
		"module", "polling-operations/ballot-box",
		"layer", "application",
		"roll_id", roll.RollID,
		"station_id", roll.StationID,
	)
	return entry, nil
}

func (uc RollUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
