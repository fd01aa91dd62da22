package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"scrutin/contexts/tabulation/result-aggregator/application/queries"
	"scrutin/contexts/tabulation/result-aggregator/domain/entities"
	httptransport "scrutin/contexts/tabulation/result-aggregator/transport/http"
)

type Handler struct {
	Aggregates queries.AggregateUseCase
	Logger     *slog.Logger
}

func (h Handler) AggregateHandler(ctx context.Context, electionID string, level string) (httptransport.AggregateResponse, error) {
	resolved := entities.LevelGlobal
	if strings.TrimSpace(level) != "" {
		resolved = entities.AggregationLevel(strings.ToLower(strings.TrimSpace(level)))
	}
	results, err := h.Aggregates.AggregateByLevel(ctx, electionID, resolved)
	if err != nil {
		return httptransport.AggregateResponse{}, err
	}
	buckets := make([]httptransport.AggregateBucket, 0, len(results))
	for _, result := range results {
		candidates := make([]httptransport.CandidateTotal, 0, len(result.Candidates))
		for _, candidate := range result.Candidates {
			candidates = append(candidates, httptransport.CandidateTotal{
				CandidacyID: candidate.CandidacyID,
				Votes:       candidate.Votes,
				Percent:     candidate.Percent,
			})
		}
		buckets = append(buckets, httptransport.AggregateBucket{
			UnitID:            result.UnitID,
			Registered:        result.Registered,
			Voters:            result.Voters,
			Blank:             result.Blank,
			Spoiled:           result.Spoiled,
			Valid:             result.Valid,
			TalliesCounted:    result.TalliesCounted,
			ParticipationRate: result.ParticipationRate,
			Candidates:        candidates,
		})
	}
	return httptransport.AggregateResponse{
		ElectionID: strings.TrimSpace(electionID),
		Level:      string(resolved),
		Buckets:    buckets,
	}, nil
}

func (h Handler) ProgressHandler(ctx context.Context, electionID string) (httptransport.ProgressResponse, error) {
	progress, err := h.Aggregates.Progress(ctx, electionID)
	if err != nil {
		return httptransport.ProgressResponse{}, err
	}
	return httptransport.ProgressResponse{
		ElectionID:        progress.ElectionID,
		StationsTotal:     progress.StationsTotal,
		StationsReported:  progress.StationsReported,
		Registered:        progress.Registered,
		Voters:            progress.Voters,
		ParticipationRate: progress.ParticipationRate,
	}, nil
}
