package queries

import (
	"context"
	"strings"

	"scrutin/contexts/tabulation/dispute-resolver/domain/entities"
	"scrutin/contexts/tabulation/dispute-resolver/ports"
)

type HistoryUseCase struct {
	Disputes ports.DisputeRepository
}

func (uc HistoryUseCase) Dispute(ctx context.Context, disputeID string) (entities.Dispute, error) {
	return uc.Disputes.GetDispute(ctx, strings.TrimSpace(disputeID))
}

func (uc HistoryUseCase) ListByTally(ctx context.Context, tallyID string) ([]entities.Dispute, error) {
	return uc.Disputes.ListByTally(ctx, strings.TrimSpace(tallyID))
}

func (uc HistoryUseCase) History(ctx context.Context, filter ports.HistoryFilter) ([]entities.Dispute, error) {
	return uc.Disputes.ListHistory(ctx, filter)
}
