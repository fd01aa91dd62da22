package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "scrutin/contexts/tabulation/tally-ledger/application"
	domainerrors "scrutin/contexts/tabulation/tally-ledger/domain/errors"
	"scrutin/contexts/tabulation/tally-ledger/ports"
)

// DefaultSupervisorRole is the role the validation gate expects when the
// deployment does not override it.
const DefaultSupervisorRole = "SUPERVISOR"

type SetFinalCountsCommand struct {
	TallyID      string
	Voters       int
	Spoiled      int
	Blank        int
	Observations string
}

type ValidateCommand struct {
	TallyID       string
	ValidatorID   string
	ValidatorRole string
	Comment       string
}

// LedgerUseCase mutates tallies. Every write goes through a conditional
// repository operation so concurrent supervisors cannot double-apply.
type LedgerUseCase struct {
	Tallies        ports.TallyRepository
	Clock          ports.Clock
	SupervisorRole string
	Logger         *slog.Logger
}

// IncrementCandidate is the manual correction path. The live cast path owned
// by the ballot box bumps valid_count as it goes; this one checks against the
// stored valid_count instead.
func (uc LedgerUseCase) IncrementCandidate(ctx context.Context, tallyID string, candidacyID string) error {
	logger := application.ResolveLogger(uc.Logger)

	tallyID = strings.TrimSpace(tallyID)
	candidacyID = strings.TrimSpace(candidacyID)
	if tallyID == "" || candidacyID == "" {
		return domainerrors.ErrInvalidTallyInput
	}

	if err := uc.Tallies.ApplyIncrement(ctx, tallyID, candidacyID, uc.now()); err != nil {
		return err
	}

	logger.Info("candidate vote incremented",
		"event", "tally_candidate_incremented",
		"module", "tabulation/tally-ledger",
		"layer", "application",
		"tally_id", tallyID,
		"candidacy_id", candidacyID,
	)
	return nil
}

func (uc LedgerUseCase) SetFinalCounts(ctx context.Context, cmd SetFinalCountsCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	tallyID := strings.TrimSpace(cmd.TallyID)
	if tallyID == "" {
		return domainerrors.ErrInvalidTallyInput
	}
	if cmd.Voters < 0 || cmd.Spoiled < 0 || cmd.Blank < 0 {
		return domainerrors.ErrInvalidCounts
	}
	if cmd.Spoiled+cmd.Blank > cmd.Voters {
		return domainerrors.ErrInvalidCounts
	}

	record := ports.FinalCountsRecord{
		TallyID:      tallyID,
		Voters:       cmd.Voters,
		Spoiled:      cmd.Spoiled,
		Blank:        cmd.Blank,
		Valid:        cmd.Voters - cmd.Spoiled - cmd.Blank,
		Observations: strings.TrimSpace(cmd.Observations),
		UpdatedAt:    uc.now(),
	}
	if err := uc.Tallies.ApplyFinalCounts(ctx, record); err != nil {
		return err
	}

	logger.Info("final counts recorded",
		"event", "tally_final_counts_recorded",
		"module", "tabulation/tally-ledger",
		"layer", "application",
		"tally_id", tallyID,
		"voters", cmd.Voters,
		"valid", record.Valid,
	)
	return nil
}

// Validate applies the supervisor gate locally; deciding who holds the role
// is the caller's concern.
func (uc LedgerUseCase) Validate(ctx context.Context, cmd ValidateCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	tallyID := strings.TrimSpace(cmd.TallyID)
	if tallyID == "" {
		return domainerrors.ErrInvalidTallyInput
	}
	required := strings.TrimSpace(uc.SupervisorRole)
	if required == "" {
		required = DefaultSupervisorRole
	}
	if !strings.EqualFold(strings.TrimSpace(cmd.ValidatorRole), required) {
		logger.Warn("tally validation rejected",
			"event", "tally_validate_not_authorized",
			"module", "tabulation/tally-ledger",
			"layer", "application",
			"tally_id", tallyID,
		)
		return domainerrors.ErrNotAuthorized
	}

	err := uc.Tallies.ApplyValidate(ctx, tallyID, strings.TrimSpace(cmd.ValidatorID), strings.TrimSpace(cmd.Comment), uc.now())
	if err != nil {
		return err
	}

	logger.Info("tally validated",
		"event", "tally_validated",
		"module", "tabulation/tally-ledger",
		"layer", "application",
		"tally_id", tallyID,
	)
	return nil
}

// Invalidate is reserved for the dispute path; it never goes through the
// role gate.
func (uc LedgerUseCase) Invalidate(ctx context.Context, tallyID string) error {
	logger := application.ResolveLogger(uc.Logger)

	tallyID = strings.TrimSpace(tallyID)
	if tallyID == "" {
		return domainerrors.ErrInvalidTallyInput
	}
	if err := uc.Tallies.ApplyInvalidate(ctx, tallyID, uc.now()); err != nil {
		return err
	}

	logger.Info("tally invalidated",
		"event", "tally_invalidated",
		"module", "tabulation/tally-ledger",
		"layer", "application",
		"tally_id", tallyID,
	)
	return nil
}

func (uc LedgerUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
