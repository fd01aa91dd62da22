package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "scrutin/contexts/tabulation/dispute-resolver/application"
	"scrutin/contexts/tabulation/dispute-resolver/domain/entities"
	domainerrors "scrutin/contexts/tabulation/dispute-resolver/domain/errors"
	"scrutin/contexts/tabulation/dispute-resolver/ports"
)

type SubmitDisputeCommand struct {
	TallyID          string
	CandidacyID      string
	RepresentativeID string
	Motif            string
	Description      string
}

type ResolveDisputeCommand struct {
	DisputeID string
	Decision  entities.DisputeDecision
	Comment   string
}

type DisputeUseCase struct {
	Disputes ports.DisputeRepository
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc DisputeUseCase) Submit(ctx context.Context, cmd SubmitDisputeCommand) (entities.Dispute, error) {
	logger := application.ResolveLogger(uc.Logger)

	tallyID := strings.TrimSpace(cmd.TallyID)
	candidacyID := strings.TrimSpace(cmd.CandidacyID)
	representativeID := strings.TrimSpace(cmd.RepresentativeID)
	motif := strings.TrimSpace(cmd.Motif)
	if tallyID == "" || candidacyID == "" || representativeID == "" || motif == "" {
		return entities.Dispute{}, domainerrors.ErrInvalidDisputeInput
	}

	exists, err := uc.Disputes.TallyExists(ctx, tallyID)
	if err != nil {
		return entities.Dispute{}, err
	}
	if !exists {
		return entities.Dispute{}, domainerrors.ErrTallyNotFound
	}

	disputeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Dispute{}, err
	}
	dispute := entities.Dispute{
		DisputeID:        disputeID,
		TallyID:          tallyID,
		CandidacyID:      candidacyID,
		RepresentativeID: representativeID,
		Motif:            motif,
		Description:      strings.TrimSpace(cmd.Description),
		Status:           entities.DisputeStatusPending,
		SubmittedAt:      uc.now(),
	}
	if err := uc.Disputes.ApplySubmit(ctx, dispute); err != nil {
		return entities.Dispute{}, err
	}

	logger.Info("dispute submitted",
		"event", "dispute_submitted",
		"module", "tabulation/dispute-resolver",
		"layer", "application",
		"dispute_id", disputeID,
		"tally_id", tallyID,
		"candidacy_id", candidacyID,
	)
	return dispute, nil
}

// Resolve closes a pending dispute. Acceptance invalidates the tally inside
// the same repository transaction, so the result fold never observes an
// accepted dispute with a still-valid tally.
func (uc DisputeUseCase) Resolve(ctx context.Context, cmd ResolveDisputeCommand) (entities.Dispute, error) {
	logger := application.ResolveLogger(uc.Logger)

	disputeID := strings.TrimSpace(cmd.DisputeID)
	if disputeID == "" {
		return entities.Dispute{}, domainerrors.ErrInvalidDisputeInput
	}
	if cmd.Decision != entities.DecisionAccepted && cmd.Decision != entities.DecisionRejected {
		return entities.Dispute{}, domainerrors.ErrInvalidDecision
	}

	dispute, err := uc.Disputes.GetDispute(ctx, disputeID)
	if err != nil {
		return entities.Dispute{}, err
	}

	resolvedAt := uc.now()
	record := ports.ResolutionRecord{
		DisputeID:  disputeID,
		TallyID:    dispute.TallyID,
		Decision:   cmd.Decision,
		Comment:    strings.TrimSpace(cmd.Comment),
		ResolvedAt: resolvedAt,
	}
	if err := uc.Disputes.ApplyResolution(ctx, record); err != nil {
		return entities.Dispute{}, err
	}

	dispute.Status = entities.DisputeStatusPending
	switch cmd.Decision {
	case entities.DecisionAccepted:
		dispute.Status = entities.DisputeStatusAccepted
	case entities.DecisionRejected:
		dispute.Status = entities.DisputeStatusRejected
	}
	dispute.DecisionComment = record.Comment
	dispute.ResolvedAt = &resolvedAt

	if err := uc.appendResolvedEvent(ctx, dispute); err != nil {
		logger.Warn("dispute resolved event append failed",
			"event", "dispute_resolved_event_append_failed",
			"module", "tabulation/dispute-resolver",
			"layer", "application",
			"dispute_id", disputeID,
			"error", err.Error(),
		)
	}

	logger.Info("dispute resolved",
		"event", "dispute_resolved",
		"module", "tabulation/dispute-resolver",
		"layer", "application",
		"dispute_id", disputeID,
		"tally_id", dispute.TallyID,
		"decision", string(cmd.Decision),
	)
	return dispute, nil
}

func (uc DisputeUseCase) appendResolvedEvent(ctx context.Context, dispute entities.Dispute) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	resolvedAt := uc.now()
	if dispute.ResolvedAt != nil {
		resolvedAt = dispute.ResolvedAt.UTC()
	}
	envelope, err := newDisputeEnvelope(eventID, "dispute.resolved", dispute.TallyID, resolvedAt, map[string]any{
		"dispute_id":   dispute.DisputeID,
		"tally_id":     dispute.TallyID,
		"candidacy_id": dispute.CandidacyID,
		"status":       string(dispute.Status),
		"resolved_at":  resolvedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc DisputeUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
