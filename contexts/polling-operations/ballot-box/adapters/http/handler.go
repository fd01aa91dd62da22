package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"scrutin/contexts/polling-operations/ballot-box/application/commands"
	"scrutin/contexts/polling-operations/ballot-box/application/queries"
	httptransport "scrutin/contexts/polling-operations/ballot-box/transport/http"
)

type Handler struct {
	Casts   commands.CastUseCase
	Rolls   commands.RollUseCase
	Journal queries.JournalUseCase
	Logger  *slog.Logger
}

func (h Handler) CastBallotHandler(
	ctx context.Context,
	electionID string,
	sourceIP string,
	req httptransport.CastBallotRequest,
) (httptransport.CastBallotResponse, error) {
	result, err := h.Casts.CastBallot(ctx, commands.CastBallotCommand{
		ElectionID:  electionID,
		VoterNumber: req.VoterNumber,
		StationID:   req.StationID,
		CandidacyID: req.CandidacyID,
		Blank:       req.Blank,
		SourceIP:    sourceIP,
	})
	if err != nil {
		return httptransport.CastBallotResponse{}, err
	}
	return httptransport.CastBallotResponse{
		LogEntryID: result.LogEntryID,
		Kind:       string(result.Kind),
		CastAt:     result.CastAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) EligibilityHandler(
	ctx context.Context,
	voterNumber string,
	stationID string,
) (httptransport.EligibilityResponse, error) {
	eligibility, err := h.Journal.Eligibility(ctx, voterNumber, stationID)
	if err != nil {
		return httptransport.EligibilityResponse{}, err
	}
	return httptransport.EligibilityResponse{
		Eligible: eligibility.Eligible,
		Reason:   string(eligibility.Reason),
	}, nil
}

func (h Handler) RegisterRollHandler(
	ctx context.Context,
	req httptransport.RegisterRollRequest,
) (httptransport.RollResponse, error) {
	roll, err := h.Rolls.RegisterRoll(ctx, commands.RegisterRollCommand{
		StationID: req.StationID,
		Code:      req.Code,
	})
	if err != nil {
		return httptransport.RollResponse{}, err
	}
	return httptransport.RollResponse{
		RollID:    roll.RollID,
		StationID: roll.StationID,
		Code:      roll.Code,
		CreatedAt: roll.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) AddVoterHandler(
	ctx context.Context,
	rollID string,
	req httptransport.AddVoterRequest,
) (httptransport.RollEntryResponse, error) {
	entry, err := h.Rolls.AddVoter(ctx, commands.AddVoterCommand{
		RollID:      rollID,
		VoterNumber: req.VoterNumber,
	})
	if err != nil {
		return httptransport.RollEntryResponse{}, err
	}
	return httptransport.RollEntryResponse{
		VoterNumber: entry.VoterNumber,
		RollID:      entry.RollID,
		StationID:   entry.StationID,
		HasVoted:    entry.HasVoted,
	}, nil
}

func (h Handler) RollEntriesHandler(ctx context.Context, rollID string) (httptransport.RollEntriesResponse, error) {
	roll, err := h.Rolls.Roll.GetRoll(ctx, rollID)
	if err != nil {
		return httptransport.RollEntriesResponse{}, err
	}
	entries, err := h.Rolls.Roll.ListEntries(ctx, roll.RollID)
	if err != nil {
		return httptransport.RollEntriesResponse{}, err
	}
	items := make([]httptransport.RollEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, httptransport.RollEntryResponse{
			VoterNumber: entry.VoterNumber,
			RollID:      entry.RollID,
			StationID:   entry.StationID,
			HasVoted:    entry.HasVoted,
		})
	}
	return httptransport.RollEntriesResponse{
		RollID: roll.RollID,
		Items:  items,
	}, nil
}

func (h Handler) StationJournalHandler(ctx context.Context, stationID string) (httptransport.JournalResponse, error) {
	entries, err := h.Journal.StationJournal(ctx, stationID)
	if err != nil {
		return httptransport.JournalResponse{}, err
	}
	items := make([]httptransport.JournalEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, httptransport.JournalEntry{
			EntryID:     entry.EntryID,
			StationID:   entry.StationID,
			VoterNumber: entry.VoterNumber,
			CastAt:      entry.CastAt.UTC().Format(time.RFC3339),
			SourceIP:    entry.SourceIP,
		})
	}
	return httptransport.JournalResponse{
		StationID: stationID,
		Items:     items,
	}, nil
}
