package queries

import (
	"context"
	"errors"
	"strings"

	"scrutin/contexts/polling-operations/ballot-box/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/ballot-box/domain/errors"
	"scrutin/contexts/polling-operations/ballot-box/ports"
)

type JournalUseCase struct {
	Ballots ports.BallotRepository
	Roll    ports.RollRepository
}

func (uc JournalUseCase) StationJournal(ctx context.Context, stationID string) ([]entities.VoteLogEntry, error) {
	return uc.Ballots.ListJournal(ctx, strings.TrimSpace(stationID))
}

// Eligibility answers the pre-cast check without mutating anything. The cast
// transaction re-verifies everything it reports.
func (uc JournalUseCase) Eligibility(ctx context.Context, voterNumber string, stationID string) (entities.Eligibility, error) {
	entry, err := uc.Roll.GetEntry(ctx, strings.TrimSpace(voterNumber))
	if err != nil {
		if errors.Is(err, domainerrors.ErrVoterNotFound) {
			return entities.Eligibility{Reason: entities.EligibilityNotFound}, nil
		}
		return entities.Eligibility{}, err
	}
	if entry.StationID != strings.TrimSpace(stationID) {
		return entities.Eligibility{Reason: entities.EligibilityWrongStation}, nil
	}
	if entry.HasVoted {
		return entities.Eligibility{Reason: entities.EligibilityVoted}, nil
	}
	return entities.Eligibility{Eligible: true, Reason: entities.EligibilityOK}, nil
}
