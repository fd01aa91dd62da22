package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"scrutin/contexts/tabulation/dispute-resolver/application/commands"
	"scrutin/contexts/tabulation/dispute-resolver/application/queries"
	"scrutin/contexts/tabulation/dispute-resolver/domain/entities"
	domainerrors "scrutin/contexts/tabulation/dispute-resolver/domain/errors"
	"scrutin/contexts/tabulation/dispute-resolver/ports"
	httptransport "scrutin/contexts/tabulation/dispute-resolver/transport/http"
)

type Handler struct {
	Disputes commands.DisputeUseCase
	History  queries.HistoryUseCase
	Logger   *slog.Logger
}

func (h Handler) SubmitDisputeHandler(
	ctx context.Context,
	req httptransport.SubmitDisputeRequest,
) (httptransport.DisputeResponse, error) {
	dispute, err := h.Disputes.Submit(ctx, commands.SubmitDisputeCommand{
		TallyID:          req.TallyID,
		CandidacyID:      req.CandidacyID,
		RepresentativeID: req.RepresentativeID,
		Motif:            req.Motif,
		Description:      req.Description,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return mapDispute(dispute), nil
}

func (h Handler) ResolveDisputeHandler(
	ctx context.Context,
	disputeID string,
	req httptransport.ResolveDisputeRequest,
) (httptransport.DisputeResponse, error) {
	decision, err := parseDecision(req.Decision)
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	dispute, err := h.Disputes.Resolve(ctx, commands.ResolveDisputeCommand{
		DisputeID: disputeID,
		Decision:  decision,
		Comment:   req.Comment,
	})
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return mapDispute(dispute), nil
}

func (h Handler) DisputeHandler(ctx context.Context, disputeID string) (httptransport.DisputeResponse, error) {
	dispute, err := h.History.Dispute(ctx, disputeID)
	if err != nil {
		return httptransport.DisputeResponse{}, err
	}
	return mapDispute(dispute), nil
}

func (h Handler) TallyDisputesHandler(ctx context.Context, tallyID string) (httptransport.DisputeListResponse, error) {
	disputes, err := h.History.ListByTally(ctx, tallyID)
	if err != nil {
		return httptransport.DisputeListResponse{}, err
	}
	return mapDisputeList(disputes), nil
}

func (h Handler) DisputeHistoryHandler(
	ctx context.Context,
	status string,
	from string,
	to string,
) (httptransport.DisputeListResponse, error) {
	filter := ports.HistoryFilter{}
	if status != "" {
		parsed := entities.DisputeStatus(status)
		switch parsed {
		case entities.DisputeStatusPending, entities.DisputeStatusAccepted, entities.DisputeStatusRejected:
			filter.Status = parsed
		default:
			return httptransport.DisputeListResponse{}, domainerrors.ErrInvalidDisputeInput
		}
	}
	if from != "" {
		parsed, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return httptransport.DisputeListResponse{}, domainerrors.ErrInvalidDisputeInput
		}
		filter.From = parsed
	}
	if to != "" {
		parsed, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return httptransport.DisputeListResponse{}, domainerrors.ErrInvalidDisputeInput
		}
		filter.To = parsed
	}
	disputes, err := h.History.History(ctx, filter)
	if err != nil {
		return httptransport.DisputeListResponse{}, err
	}
	return mapDisputeList(disputes), nil
}

func parseDecision(value string) (entities.DisputeDecision, error) {
	switch entities.DisputeDecision(value) {
	case entities.DecisionAccepted:
		return entities.DecisionAccepted, nil
	case entities.DecisionRejected:
		return entities.DecisionRejected, nil
	default:
		return "", domainerrors.ErrInvalidDecision
	}
}

func mapDispute(dispute entities.Dispute) httptransport.DisputeResponse {
	return httptransport.DisputeResponse{
		DisputeID:        dispute.DisputeID,
		TallyID:          dispute.TallyID,
		CandidacyID:      dispute.CandidacyID,
		RepresentativeID: dispute.RepresentativeID,
		Motif:            dispute.Motif,
		Description:      dispute.Description,
		Status:           string(dispute.Status),
		DecisionComment:  dispute.DecisionComment,
		SubmittedAt:      dispute.SubmittedAt.UTC().Format(time.RFC3339),
		ResolvedAt:       formatOptional(dispute.ResolvedAt),
	}
}

func mapDisputeList(disputes []entities.Dispute) httptransport.DisputeListResponse {
	items := make([]httptransport.DisputeResponse, 0, len(disputes))
	for _, dispute := range disputes {
		items = append(items, mapDispute(dispute))
	}
	return httptransport.DisputeListResponse{Disputes: items}
}

func formatOptional(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
