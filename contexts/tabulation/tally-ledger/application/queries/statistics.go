package queries

import (
	"context"
	"sort"
	"strings"

	"scrutin/contexts/tabulation/tally-ledger/domain/entities"
	"scrutin/contexts/tabulation/tally-ledger/ports"
)

type TallyView struct {
	Tally  entities.StationTally
	Counts []entities.CandidateVoteCount
}

type StatisticsUseCase struct {
	Tallies  ports.TallyRepository
	Stations ports.StationReader
}

func (uc StatisticsUseCase) Tally(ctx context.Context, tallyID string) (TallyView, error) {
	tally, err := uc.Tallies.GetTally(ctx, strings.TrimSpace(tallyID))
	if err != nil {
		return TallyView{}, err
	}
	counts, err := uc.Tallies.ListCounts(ctx, tally.TallyID)
	if err != nil {
		return TallyView{}, err
	}
	return TallyView{Tally: tally, Counts: counts}, nil
}

// StationStatistics folds a tally into rates. Every denominator guards
// against zero and reports 0 instead of dividing.
func (uc StatisticsUseCase) StationStatistics(ctx context.Context, tallyID string) (entities.StationStatistics, error) {
	tally, err := uc.Tallies.GetTally(ctx, strings.TrimSpace(tallyID))
	if err != nil {
		return entities.StationStatistics{}, err
	}
	counts, err := uc.Tallies.ListCounts(ctx, tally.TallyID)
	if err != nil {
		return entities.StationStatistics{}, err
	}
	registered, err := uc.Stations.RegisteredCount(ctx, tally.StationID)
	if err != nil {
		return entities.StationStatistics{}, err
	}

	participation := 0.0
	if registered > 0 {
		participation = float64(tally.VotersCount) / float64(registered) * 100
	}

	shares := make([]entities.CandidateShare, 0, len(counts))
	for _, count := range counts {
		percent := 0.0
		if tally.ValidCount > 0 {
			percent = float64(count.Votes) / float64(tally.ValidCount) * 100
		}
		shares = append(shares, entities.CandidateShare{
			CandidacyID: count.CandidacyID,
			Votes:       count.Votes,
			Percent:     percent,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Votes != shares[j].Votes {
			return shares[i].Votes > shares[j].Votes
		}
		return shares[i].CandidacyID < shares[j].CandidacyID
	})

	return entities.StationStatistics{
		TallyID:           tally.TallyID,
		StationID:         tally.StationID,
		RegisteredCount:   registered,
		VotersCount:       tally.VotersCount,
		ParticipationRate: participation,
		Candidates:        shares,
	}, nil
}
