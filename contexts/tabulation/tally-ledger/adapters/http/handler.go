package httpadapter

import (
	"context"
	"log/slog"

	"scrutin/contexts/tabulation/tally-ledger/application/commands"
	"scrutin/contexts/tabulation/tally-ledger/application/queries"
	httptransport "scrutin/contexts/tabulation/tally-ledger/transport/http"
)

type Handler struct {
	Ledger     commands.LedgerUseCase
	Statistics queries.StatisticsUseCase
	Logger     *slog.Logger
}

func (h Handler) IncrementCandidateHandler(
	ctx context.Context,
	tallyID string,
	req httptransport.IncrementCandidateRequest,
) error {
	return h.Ledger.IncrementCandidate(ctx, tallyID, req.CandidacyID)
}

func (h Handler) SetFinalCountsHandler(
	ctx context.Context,
	tallyID string,
	req httptransport.SetFinalCountsRequest,
) error {
	return h.Ledger.SetFinalCounts(ctx, commands.SetFinalCountsCommand{
		TallyID:      tallyID,
		Voters:       req.Voters,
		Spoiled:      req.Spoiled,
		Blank:        req.Blank,
		Observations: req.Observations,
	})
}

func (h Handler) ValidateTallyHandler(
	ctx context.Context,
	tallyID string,
	validatorID string,
	validatorRole string,
	req httptransport.ValidateTallyRequest,
) error {
	return h.Ledger.Validate(ctx, commands.ValidateCommand{
		TallyID:       tallyID,
		ValidatorID:   validatorID,
		ValidatorRole: validatorRole,
		Comment:       req.Comment,
	})
}

func (h Handler) TallyHandler(ctx context.Context, tallyID string) (httptransport.TallyResponse, error) {
	view, err := h.Statistics.Tally(ctx, tallyID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	counts := make([]httptransport.CandidateCount, 0, len(view.Counts))
	for _, count := range view.Counts {
		counts = append(counts, httptransport.CandidateCount{
			CandidacyID: count.CandidacyID,
			Votes:       count.Votes,
		})
	}
	return httptransport.TallyResponse{
		TallyID:           view.Tally.TallyID,
		StationID:         view.Tally.StationID,
		ElectionID:        view.Tally.ElectionID,
		Voters:            view.Tally.VotersCount,
		Spoiled:           view.Tally.SpoiledCount,
		Blank:             view.Tally.BlankCount,
		Valid:             view.Tally.ValidCount,
		Observations:      view.Tally.Observations,
		Validated:         view.Tally.Validated,
		ValidationComment: view.Tally.ValidationComment,
		MinutesRef:        view.Tally.MinutesRef,
		Counts:            counts,
	}, nil
}

func (h Handler) StationStatisticsHandler(ctx context.Context, tallyID string) (httptransport.StatisticsResponse, error) {
	stats, err := h.Statistics.StationStatistics(ctx, tallyID)
	if err != nil {
		return httptransport.StatisticsResponse{}, err
	}
	candidates := make([]httptransport.CandidateShare, 0, len(stats.Candidates))
	for _, share := range stats.Candidates {
		candidates = append(candidates, httptransport.CandidateShare{
			CandidacyID: share.CandidacyID,
			Votes:       share.Votes,
			Percent:     share.Percent,
		})
	}
	return httptransport.StatisticsResponse{
		TallyID:           stats.TallyID,
		StationID:         stats.StationID,
		RegisteredCount:   stats.RegisteredCount,
		VotersCount:       stats.VotersCount,
		ParticipationRate: stats.ParticipationRate,
		Candidates:        candidates,
	}, nil
}
