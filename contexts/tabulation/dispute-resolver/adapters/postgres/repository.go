package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"scrutin/contexts/tabulation/dispute-resolver/domain/entities"
	domainerrors "scrutin/contexts/tabulation/dispute-resolver/domain/errors"
	"scrutin/contexts/tabulation/dispute-resolver/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) ApplySubmit(ctx context.Context, dispute entities.Dispute) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&disputeModel{}).
			Where("tally_id = ?", dispute.TallyID).
			Where("representative_id = ?", dispute.RepresentativeID).
			Where("candidacy_id = ?", dispute.CandidacyID).
			Where("status = ?", string(entities.DisputeStatusPending)).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return domainerrors.ErrDuplicateDispute
		}

		row := disputeModelFromEntity(dispute)
		if err := tx.Create(&row).Error; err != nil {
			// Partial unique index on the pending triple backs the check above.
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateDispute
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateDispute) {
			return err
		}
		return r.logError("dispute_repo_apply_submit_failed", err,
			"dispute_id", strings.TrimSpace(dispute.DisputeID),
			"tally_id", strings.TrimSpace(dispute.TallyID),
		)
	}
	return nil
}

func (r *Repository) GetDispute(ctx context.Context, disputeID string) (entities.Dispute, error) {
	var row disputeModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(disputeID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Dispute{}, domainerrors.ErrDisputeNotFound
		}
		return entities.Dispute{}, r.logError("dispute_repo_get_dispute_failed", err,
			"dispute_id", strings.TrimSpace(disputeID),
		)
	}
	return row.toEntity(), nil
}

// ApplyResolution resolves a pending dispute; acceptance invalidates the
// tally in the same transaction. The conditional update on status is the
// guard against double resolution.
func (r *Repository) ApplyResolution(ctx context.Context, record ports.ResolutionRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status := string(entities.DisputeStatusRejected)
		if record.Decision == entities.DecisionAccepted {
			status = string(entities.DisputeStatusAccepted)
		}
		flip := tx.Model(&disputeModel{}).
			Where("id = ?", strings.TrimSpace(record.DisputeID)).
			Where("status = ?", string(entities.DisputeStatusPending)).
			Updates(map[string]any{
				"status":           status,
				"decision_comment": record.Comment,
				"resolved_at":      record.ResolvedAt.UTC(),
			})
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			var existing disputeModel
			lookup := tx.Where("id = ?", strings.TrimSpace(record.DisputeID)).
				First(&existing).
				Error
			if errors.Is(lookup, gorm.ErrRecordNotFound) {
				return domainerrors.ErrDisputeNotFound
			}
			if lookup != nil {
				return lookup
			}
			return domainerrors.ErrAlreadyResolved
		}

		if record.Decision == entities.DecisionAccepted {
			invalidate := tx.Table("station_tallies").
				Where("id = ?", strings.TrimSpace(record.TallyID)).
				Updates(map[string]any{
					"validated":      false,
					"invalidated_at": record.ResolvedAt.UTC(),
					"updated_at":     record.ResolvedAt.UTC(),
				})
			if invalidate.Error != nil {
				return invalidate.Error
			}
			if invalidate.RowsAffected == 0 {
				return domainerrors.ErrTallyNotFound
			}
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return r.logError("dispute_repo_apply_resolution_failed", err,
			"dispute_id", strings.TrimSpace(record.DisputeID),
			"tally_id", strings.TrimSpace(record.TallyID),
		)
	}
	return nil
}

func (r *Repository) ListByTally(ctx context.Context, tallyID string) ([]entities.Dispute, error) {
	var rows []disputeModel
	if err := r.db.WithContext(ctx).
		Where("tally_id = ?", strings.TrimSpace(tallyID)).
		Order("submitted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("dispute_repo_list_by_tally_failed", err,
			"tally_id", strings.TrimSpace(tallyID),
		)
	}
	return toDisputeEntities(rows), nil
}

func (r *Repository) ListHistory(ctx context.Context, filter ports.HistoryFilter) ([]entities.Dispute, error) {
	tx := r.db.WithContext(ctx).Model(&disputeModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if !filter.From.IsZero() {
		tx = tx.Where("submitted_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		tx = tx.Where("submitted_at <= ?", filter.To.UTC())
	}
	var rows []disputeModel
	if err := tx.Order("submitted_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("dispute_repo_list_history_failed", err)
	}
	return toDisputeEntities(rows), nil
}

func (r *Repository) TallyExists(ctx context.Context, tallyID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("station_tallies").
		Where("id = ?", strings.TrimSpace(tallyID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("dispute_repo_tally_exists_failed", err,
			"tally_id", strings.TrimSpace(tallyID),
		)
	}
	return count > 0, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("dispute_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("dispute_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("dispute_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("dispute_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("dispute_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "tabulation/dispute-resolver",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("dispute repository operation failed", fields...)
	return err
}

type disputeModel struct {
	ID               string     `gorm:"column:id;primaryKey"`
	TallyID          string     `gorm:"column:tally_id"`
	CandidacyID      string     `gorm:"column:candidacy_id"`
	RepresentativeID string     `gorm:"column:representative_id"`
	Motif            string     `gorm:"column:motif"`
	Description      string     `gorm:"column:description"`
	Status           string     `gorm:"column:status"`
	DecisionComment  string     `gorm:"column:decision_comment"`
	SubmittedAt      time.Time  `gorm:"column:submitted_at"`
	ResolvedAt       *time.Time `gorm:"column:resolved_at"`
}

func (disputeModel) TableName() string {
	return "disputes"
}

func disputeModelFromEntity(dispute entities.Dispute) disputeModel {
	row := disputeModel{
		ID:               strings.TrimSpace(dispute.DisputeID),
		TallyID:          strings.TrimSpace(dispute.TallyID),
		CandidacyID:      strings.TrimSpace(dispute.CandidacyID),
		RepresentativeID: strings.TrimSpace(dispute.RepresentativeID),
		Motif:            strings.TrimSpace(dispute.Motif),
		Description:      strings.TrimSpace(dispute.Description),
		Status:           string(dispute.Status),
		DecisionComment:  strings.TrimSpace(dispute.DecisionComment),
		SubmittedAt:      dispute.SubmittedAt.UTC(),
		ResolvedAt:       normalizeOptionalTime(dispute.ResolvedAt),
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = time.Now().UTC()
	}
	return row
}

func (m disputeModel) toEntity() entities.Dispute {
	return entities.Dispute{
		DisputeID:        m.ID,
		TallyID:          m.TallyID,
		CandidacyID:      m.CandidacyID,
		RepresentativeID: m.RepresentativeID,
		Motif:            m.Motif,
		Description:      m.Description,
		Status:           entities.DisputeStatus(m.Status),
		DecisionComment:  m.DecisionComment,
		SubmittedAt:      m.SubmittedAt.UTC(),
		ResolvedAt:       normalizeOptionalTime(m.ResolvedAt),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "dispute_outbox"
}

func toDisputeEntities(rows []disputeModel) []entities.Dispute {
	items := make([]entities.Dispute, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isDomainError(err error) bool {
	switch {
	case errors.Is(err, domainerrors.ErrDisputeNotFound),
		errors.Is(err, domainerrors.ErrAlreadyResolved),
		errors.Is(err, domainerrors.ErrDuplicateDispute),
		errors.Is(err, domainerrors.ErrTallyNotFound),
		errors.Is(err, domainerrors.ErrConflict):
		return true
	}
	return false
}

var _ ports.DisputeRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
