package ports

import (
	"context"
	"time"

	"scrutin/contexts/tabulation/tally-ledger/domain/entities"
)

// FinalCountsRecord carries a full final-counts write. Valid is derived by
// the caller; the repository re-checks the candidate sum against it under
// the transaction.
type FinalCountsRecord struct {
	TallyID      string
	Voters       int
	Spoiled      int
	Blank        int
	Valid        int
	Observations string
	UpdatedAt    time.Time
}

type TallyRepository interface {
	GetTally(ctx context.Context, tallyID string) (entities.StationTally, error)
	ListCounts(ctx context.Context, tallyID string) ([]entities.CandidateVoteCount, error)
	// ApplyIncrement adds one vote to a candidate line under a row lock on
	// the tally. Fails when the tally is validated or the resulting
	// candidate sum would exceed the stored valid count.
	ApplyIncrement(ctx context.Context, tallyID string, candidacyID string, at time.Time) error
	ApplyFinalCounts(ctx context.Context, record FinalCountsRecord) error
	// ApplyValidate flips validated under the condition that the tally is
	// neither validated nor invalidated. Zero rows is classified into
	// AlreadyValidated, PreviouslyInvalidated or NotFound.
	ApplyValidate(ctx context.Context, tallyID string, validatedBy string, comment string, at time.Time) error
	ApplyInvalidate(ctx context.Context, tallyID string, at time.Time) error
}

// StationReader resolves the registered-voter denominator for statistics.
type StationReader interface {
	RegisteredCount(ctx context.Context, stationID string) (int, error)
}

type Clock interface {
	Now() time.Time
}
