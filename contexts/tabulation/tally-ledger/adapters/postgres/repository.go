package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"scrutin/contexts/tabulation/tally-ledger/domain/entities"
	domainerrors "scrutin/contexts/tabulation/tally-ledger/domain/errors"
	"scrutin/contexts/tabulation/tally-ledger/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *Repository) GetTally(ctx context.Context, tallyID string) (entities.StationTally, error) {
	var row tallyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(tallyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.StationTally{}, domainerrors.ErrTallyNotFound
		}
		return entities.StationTally{}, r.logError("tally_repo_get_tally_failed", err,
			"tally_id", strings.TrimSpace(tallyID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCounts(ctx context.Context, tallyID string) ([]entities.CandidateVoteCount, error) {
	var rows []voteCountModel
	if err := r.db.WithContext(ctx).
		Where("tally_id = ?", strings.TrimSpace(tallyID)).
		Order("candidacy_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("tally_repo_list_counts_failed", err,
			"tally_id", strings.TrimSpace(tallyID),
		)
	}
	items := make([]entities.CandidateVoteCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// ApplyIncrement locks the tally row for the duration of the sum check, so
// two concurrent corrections cannot both pass the guard.
func (r *Repository) ApplyIncrement(ctx context.Context, tallyID string, candidacyID string, at time.Time) error {
	tallyID = strings.TrimSpace(tallyID)
	candidacyID = strings.TrimSpace(candidacyID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tally tallyModel
		lookup := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", tallyID).
			First(&tally).
			Error
		if lookup != nil {
			if errors.Is(lookup, gorm.ErrRecordNotFound) {
				return domainerrors.ErrTallyNotFound
			}
			return lookup
		}
		if tally.Validated {
			return domainerrors.ErrTallyValidated
		}

		var sum int64
		if err := tx.Model(&voteCountModel{}).
			Where("tally_id = ?", tallyID).
			Select("COALESCE(SUM(votes), 0)").
			Scan(&sum).Error; err != nil {
			return err
		}
		if int(sum)+1 > tally.ValidCount {
			return domainerrors.ErrSumExceedsValid
		}

		bump := tx.Model(&voteCountModel{}).
			Where("tally_id = ?", tallyID).
			Where("candidacy_id = ?", candidacyID).
			Updates(map[string]any{
				"votes":      gorm.Expr("votes + 1"),
				"updated_at": at.UTC(),
			})
		if bump.Error != nil {
			return bump.Error
		}
		if bump.RowsAffected == 0 {
			return domainerrors.ErrCandidateNotFound
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return r.logError("tally_repo_apply_increment_failed", err,
			"tally_id", tallyID,
			"candidacy_id", candidacyID,
		)
	}
	return nil
}

func (r *Repository) ApplyFinalCounts(ctx context.Context, record ports.FinalCountsRecord) error {
	tallyID := strings.TrimSpace(record.TallyID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tally tallyModel
		lookup := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", tallyID).
			First(&tally).
			Error
		if lookup != nil {
			if errors.Is(lookup, gorm.ErrRecordNotFound) {
				return domainerrors.ErrTallyNotFound
			}
			return lookup
		}
		if tally.Validated {
			return domainerrors.ErrTallyValidated
		}

		var sum int64
		if err := tx.Model(&voteCountModel{}).
			Where("tally_id = ?", tallyID).
			Select("COALESCE(SUM(votes), 0)").
			Scan(&sum).Error; err != nil {
			return err
		}
		if int(sum) > record.Valid {
			return domainerrors.ErrSumExceedsValid
		}

		return tx.Model(&tallyModel{}).
			Where("id = ?", tallyID).
			Updates(map[string]any{
				"voters_count":  record.Voters,
				"spoiled_count": record.Spoiled,
				"blank_count":   record.Blank,
				"valid_count":   record.Valid,
				"observations":  record.Observations,
				"updated_at":    record.UpdatedAt.UTC(),
			}).Error
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return r.logError("tally_repo_apply_final_counts_failed", err,
			"tally_id", tallyID,
		)
	}
	return nil
}

func (r *Repository) ApplyValidate(ctx context.Context, tallyID string, validatedBy string, comment string, at time.Time) error {
	tallyID = strings.TrimSpace(tallyID)
	flip := r.db.WithContext(ctx).Model(&tallyModel{}).
		Where("id = ?", tallyID).
		Where("validated = ?", false).
		Where("invalidated_at IS NULL").
		Updates(map[string]any{
			"validated":          true,
			"validated_by":       strings.TrimSpace(validatedBy),
			"validation_comment": strings.TrimSpace(comment),
			"validated_at":       at.UTC(),
			"updated_at":         at.UTC(),
		})
	if flip.Error != nil {
		return r.logError("tally_repo_apply_validate_failed", flip.Error,
			"tally_id", tallyID,
		)
	}
	if flip.RowsAffected == 0 {
		var existing tallyModel
		lookup := r.db.WithContext(ctx).
			Where("id = ?", tallyID).
			First(&existing).
			Error
		if errors.Is(lookup, gorm.ErrRecordNotFound) {
			return domainerrors.ErrTallyNotFound
		}
		if lookup != nil {
			return r.logError("tally_repo_validate_lookup_failed", lookup,
				"tally_id", tallyID,
			)
		}
		if existing.InvalidatedAt != nil {
			return domainerrors.ErrPreviouslyInvalidated
		}
		return domainerrors.ErrAlreadyValidated
	}
	return nil
}

func (r *Repository) ApplyInvalidate(ctx context.Context, tallyID string, at time.Time) error {
	tallyID = strings.TrimSpace(tallyID)
	flip := r.db.WithContext(ctx).Model(&tallyModel{}).
		Where("id = ?", tallyID).
		Updates(map[string]any{
			"validated":      false,
			"invalidated_at": at.UTC(),
			"updated_at":     at.UTC(),
		})
	if flip.Error != nil {
		return r.logError("tally_repo_apply_invalidate_failed", flip.Error,
			"tally_id", tallyID,
		)
	}
	if flip.RowsAffected == 0 {
		return domainerrors.ErrTallyNotFound
	}
	return nil
}

func (r *Repository) RegisteredCount(ctx context.Context, stationID string) (int, error) {
	var row stationProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(stationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrStationNotFound
		}
		return 0, r.logError("tally_repo_registered_count_failed", err,
			"station_id", strings.TrimSpace(stationID),
		)
	}
	return row.RegisteredCount, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "tabulation/tally-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("tally repository operation failed", fields...)
	return err
}

type tallyModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	StationID         string     `gorm:"column:station_id"`
	ElectionID        string     `gorm:"column:election_id"`
	VotersCount       int        `gorm:"column:voters_count"`
	SpoiledCount      int        `gorm:"column:spoiled_count"`
	BlankCount        int        `gorm:"column:blank_count"`
	ValidCount        int        `gorm:"column:valid_count"`
	Observations      string     `gorm:"column:observations"`
	ValidationComment string     `gorm:"column:validation_comment"`
	MinutesRef        string     `gorm:"column:minutes_ref"`
	Validated         bool       `gorm:"column:validated"`
	ValidatedBy       string     `gorm:"column:validated_by"`
	ValidatedAt       *time.Time `gorm:"column:validated_at"`
	InvalidatedAt     *time.Time `gorm:"column:invalidated_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (tallyModel) TableName() string {
	return "station_tallies"
}

func (m tallyModel) toEntity() entities.StationTally {
	return entities.StationTally{
		TallyID:           m.ID,
		StationID:         m.StationID,
		ElectionID:        m.ElectionID,
		VotersCount:       m.VotersCount,
		SpoiledCount:      m.SpoiledCount,
		BlankCount:        m.BlankCount,
		ValidCount:        m.ValidCount,
		Observations:      m.Observations,
		ValidationComment: m.ValidationComment,
		MinutesRef:        m.MinutesRef,
		Validated:         m.Validated,
		ValidatedBy:       m.ValidatedBy,
		ValidatedAt:       normalizeOptionalTime(m.ValidatedAt),
		InvalidatedAt:     normalizeOptionalTime(m.InvalidatedAt),
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type voteCountModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	TallyID     string    `gorm:"column:tally_id"`
	CandidacyID string    `gorm:"column:candidacy_id"`
	Votes       int       `gorm:"column:votes"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (voteCountModel) TableName() string {
	return "candidate_vote_counts"
}

func (m voteCountModel) toEntity() entities.CandidateVoteCount {
	return entities.CandidateVoteCount{
		CountID:     m.ID,
		TallyID:     m.TallyID,
		CandidacyID: m.CandidacyID,
		Votes:       m.Votes,
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type stationProjectionModel struct {
	ID              string `gorm:"column:id;primaryKey"`
	RegisteredCount int    `gorm:"column:registered_count"`
}

func (stationProjectionModel) TableName() string {
	return "stations"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isDomainError(err error) bool {
	switch {
	case errors.Is(err, domainerrors.ErrTallyNotFound),
		errors.Is(err, domainerrors.ErrTallyValidated),
		errors.Is(err, domainerrors.ErrAlreadyValidated),
		errors.Is(err, domainerrors.ErrPreviouslyInvalidated),
		errors.Is(err, domainerrors.ErrCandidateNotFound),
		errors.Is(err, domainerrors.ErrSumExceedsValid),
		errors.Is(err, domainerrors.ErrStationNotFound):
		return true
	}
	return false
}

var _ ports.TallyRepository = (*Repository)(nil)
var _ ports.StationReader = (*Repository)(nil)
