package queries

import (
	"context"
	"sort"
	"strings"

	"scrutin/contexts/tabulation/result-aggregator/domain/entities"
	domainerrors "scrutin/contexts/tabulation/result-aggregator/domain/errors"
	"scrutin/contexts/tabulation/result-aggregator/ports"
)

type AggregateUseCase struct {
	Results ports.ResultsReader
}

// AggregateGlobal folds every validated tally of the election into one
// bucket.
func (uc AggregateUseCase) AggregateGlobal(ctx context.Context, electionID string) (entities.AggregateResult, error) {
	buckets, err := uc.aggregate(ctx, electionID, entities.LevelGlobal)
	if err != nil {
		return entities.AggregateResult{}, err
	}
	if len(buckets) == 0 {
		return entities.AggregateResult{
			ElectionID: strings.TrimSpace(electionID),
			Level:      entities.LevelGlobal,
			Candidates: []entities.CandidateTotal{},
		}, nil
	}
	return buckets[0], nil
}

// AggregateByLevel folds validated tallies grouped by the requested
// geographic unit.
func (uc AggregateUseCase) AggregateByLevel(
	ctx context.Context,
	electionID string,
	level entities.AggregationLevel,
) ([]entities.AggregateResult, error) {
	switch level {
	case entities.LevelCommune, entities.LevelDepartment, entities.LevelRegion:
		return uc.aggregate(ctx, electionID, level)
	case entities.LevelGlobal:
		result, err := uc.AggregateGlobal(ctx, electionID)
		if err != nil {
			return nil, err
		}
		return []entities.AggregateResult{result}, nil
	default:
		return nil, domainerrors.ErrUnknownLevel
	}
}

// Progress reports counting progress over all tallies, validated or not.
func (uc AggregateUseCase) Progress(ctx context.Context, electionID string) (entities.Progress, error) {
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return entities.Progress{}, domainerrors.ErrInvalidAggregateInput
	}
	if err := uc.requireElection(ctx, electionID); err != nil {
		return entities.Progress{}, err
	}

	facts, err := uc.Results.ListTallyFacts(ctx, electionID)
	if err != nil {
		return entities.Progress{}, err
	}

	progress := entities.Progress{ElectionID: electionID}
	for _, fact := range facts {
		progress.StationsTotal++
		progress.Registered += fact.Registered
		if !fact.Reported {
			continue
		}
		progress.StationsReported++
		progress.Voters += fact.Voters
	}
	if progress.Registered > 0 {
		progress.ParticipationRate = float64(progress.Voters) / float64(progress.Registered) * 100
	}
	return progress, nil
}

func (uc AggregateUseCase) aggregate(
	ctx context.Context,
	electionID string,
	level entities.AggregationLevel,
) ([]entities.AggregateResult, error) {
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return nil, domainerrors.ErrInvalidAggregateInput
	}
	if err := uc.requireElection(ctx, electionID); err != nil {
		return nil, err
	}

	facts, err := uc.Results.ListTallyFacts(ctx, electionID)
	if err != nil {
		return nil, err
	}
	votes, err := uc.Results.ListVoteFacts(ctx, electionID)
	if err != nil {
		return nil, err
	}

	votesByTally := make(map[string][]ports.CandidateVoteFact, len(facts))
	for _, vote := range votes {
		votesByTally[vote.TallyID] = append(votesByTally[vote.TallyID], vote)
	}

	buckets := make(map[string]*entities.AggregateResult)
	candidateTotals := make(map[string]map[string]int)
	for _, fact := range facts {
		if !fact.Validated {
			continue
		}
		unitID := unitFor(fact, level)
		bucket, ok := buckets[unitID]
		if !ok {
			bucket = &entities.AggregateResult{
				ElectionID: electionID,
				Level:      level,
				UnitID:     unitID,
			}
			buckets[unitID] = bucket
			candidateTotals[unitID] = make(map[string]int)
		}
		bucket.Registered += fact.Registered
		bucket.Voters += fact.Voters
		bucket.Blank += fact.Blank
		bucket.Spoiled += fact.Spoiled
		bucket.Valid += fact.Valid
		bucket.TalliesCounted++
		for _, vote := range votesByTally[fact.TallyID] {
			candidateTotals[unitID][vote.CandidacyID] += vote.Votes
		}
	}

	results := make([]entities.AggregateResult, 0, len(buckets))
	for unitID, bucket := range buckets {
		if bucket.Registered > 0 {
			bucket.ParticipationRate = float64(bucket.Voters) / float64(bucket.Registered) * 100
		}
		totals := candidateTotals[unitID]
		candidates := make([]entities.CandidateTotal, 0, len(totals))
		for candidacyID, total := range totals {
			percent := 0.0
			if bucket.Valid > 0 {
				percent = float64(total) / float64(bucket.Valid) * 100
			}
			candidates = append(candidates, entities.CandidateTotal{
				CandidacyID: candidacyID,
				Votes:       total,
				Percent:     percent,
			})
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Votes != candidates[j].Votes {
				return candidates[i].Votes > candidates[j].Votes
			}
			return candidates[i].CandidacyID < candidates[j].CandidacyID
		})
		bucket.Candidates = candidates
		results = append(results, *bucket)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].UnitID < results[j].UnitID
	})
	return results, nil
}

func (uc AggregateUseCase) requireElection(ctx context.Context, electionID string) error {
	exists, err := uc.Results.ElectionExists(ctx, electionID)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.ErrElectionNotFound
	}
	return nil
}

func unitFor(fact ports.TallyFact, level entities.AggregationLevel) string {
	switch level {
	case entities.LevelCommune:
		return fact.CommuneID
	case entities.LevelDepartment:
		return fact.DepartmentID
	case entities.LevelRegion:
		return fact.RegionID
	default:
		return fact.ElectionID
	}
}
