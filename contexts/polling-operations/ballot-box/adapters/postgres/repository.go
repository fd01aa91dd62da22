package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"scrutin/contexts/polling-operations/ballot-box/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/ballot-box/domain/errors"
	"scrutin/contexts/polling-operations/ballot-box/ports"

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

func (r *Repository) GetElection(ctx context.Context, electionID string) (ports.ElectionProjection, error) {
	var row electionProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ElectionProjection{}, domainerrors.ErrElectionNotFound
		}
		return ports.ElectionProjection{}, r.logError("ballot_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return ports.ElectionProjection{
		ElectionID: row.ID,
		Status:     row.Status,
	}, nil
}

func (r *Repository) GetStation(ctx context.Context, stationID string) (ports.StationProjection, error) {
	var row stationProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(stationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.StationProjection{}, domainerrors.ErrStationNotFound
		}
		return ports.StationProjection{}, r.logError("ballot_repo_get_station_failed", err,
			"station_id", strings.TrimSpace(stationID),
		)
	}
	return ports.StationProjection{
		StationID:       row.ID,
		ElectionID:      row.ElectionID,
		Status:          row.Status,
		RegisteredCount: row.RegisteredCount,
	}, nil
}

// ApplyCast runs the whole cast as a single transaction. The conditional
// UPDATE on has_voted is the serialization point: under concurrent casts for
// one voter exactly one transaction flips the flag, the rest see zero rows
// and roll back with ErrAlreadyVoted.
func (r *Repository) ApplyCast(ctx context.Context, record ports.CastRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mark := tx.Model(&rollEntryModel{}).
			Where("voter_number = ?", record.VoterNumber).
			Where("station_id = ?", record.StationID).
			Where("has_voted = ?", false).
			Where("archived = ?", false).
			Updates(map[string]any{
				"has_voted":  true,
				"updated_at": record.CastAt.UTC(),
			})
		if mark.Error != nil {
			return mark.Error
		}
		if mark.RowsAffected == 0 {
			var entry rollEntryModel
			lookup := tx.Where("voter_number = ?", record.VoterNumber).
				Where("archived = ?", false).
				First(&entry).
				Error
			switch {
			case errors.Is(lookup, gorm.ErrRecordNotFound):
				return domainerrors.ErrVoterNotFound
			case lookup != nil:
				return lookup
			case entry.StationID != record.StationID:
				return domainerrors.ErrWrongStation
			default:
				return domainerrors.ErrAlreadyVoted
			}
		}

		var tally stationTallyModel
		lookup := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("station_id = ?", record.StationID).
			Where("validated = ?", false).
			Order("created_at DESC").
			First(&tally).
			Error
		if lookup != nil {
			if errors.Is(lookup, gorm.ErrRecordNotFound) {
				return domainerrors.ErrNoOpenTally
			}
			return lookup
		}

		updates := map[string]any{
			"voters_count": gorm.Expr("voters_count + 1"),
			"updated_at":   record.CastAt.UTC(),
		}
		switch record.Kind {
		case entities.BallotKindCandidate:
			updates["valid_count"] = gorm.Expr("valid_count + 1")
			line := tx.Model(&candidateVoteCountModel{}).
				Where("tally_id = ?", tally.ID).
				Where("candidacy_id = ?", record.CandidacyID).
				Updates(map[string]any{
					"votes":      gorm.Expr("votes + 1"),
					"updated_at": record.CastAt.UTC(),
				})
			if line.Error != nil {
				return line.Error
			}
			if line.RowsAffected == 0 {
				return domainerrors.ErrCandidateNotOnBallot
			}
		case entities.BallotKindBlank:
			updates["blank_count"] = gorm.Expr("blank_count + 1")
		default:
			return domainerrors.ErrInvalidCastInput
		}

		if err := tx.Model(&stationTallyModel{}).
			Where("id = ?", tally.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		journal := voteJournalModel{
			ID:          strings.TrimSpace(record.LogEntryID),
			StationID:   strings.TrimSpace(record.StationID),
			VoterNumber: strings.TrimSpace(record.VoterNumber),
			SourceIP:    strings.TrimSpace(record.SourceIP),
			CastAt:      record.CastAt.UTC(),
		}
		if err := tx.Create(&journal).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return err
		}
		return r.logError("ballot_repo_apply_cast_failed", err,
			"station_id", strings.TrimSpace(record.StationID),
			"voter_number", strings.TrimSpace(record.VoterNumber),
		)
	}
	return nil
}

func (r *Repository) ListJournal(ctx context.Context, stationID string) ([]entities.VoteLogEntry, error) {
	var rows []voteJournalModel
	if err := r.db.WithContext(ctx).
		Where("station_id = ?", strings.TrimSpace(stationID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_journal_failed", err,
			"station_id", strings.TrimSpace(stationID),
		)
	}
	items := make([]entities.VoteLogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveRoll(ctx context.Context, roll entities.VoterRoll) error {
	row := voterRollModel{
		ID:        strings.TrimSpace(roll.RollID),
		StationID: strings.TrimSpace(roll.StationID),
		Code:      strings.TrimSpace(roll.Code),
		CreatedAt: roll.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			// station_id carries a unique index; one roll per station.
			return domainerrors.ErrRollExists
		}
		return r.logError("ballot_repo_save_roll_failed", create.Error,
			"roll_id", row.ID,
			"station_id", row.StationID,
		)
	}
	return nil
}

func (r *Repository) GetRollByStation(ctx context.Context, stationID string) (entities.VoterRoll, bool, error) {
	var row voterRollModel
	err := r.db.WithContext(ctx).
		Where("station_id = ?", strings.TrimSpace(stationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterRoll{}, false, nil
		}
		return entities.VoterRoll{}, false, r.logError("ballot_repo_get_roll_by_station_failed", err,
			"station_id", strings.TrimSpace(stationID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetRoll(ctx context.Context, rollID string) (entities.VoterRoll, error) {
	var row voterRollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(rollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoterRoll{}, domainerrors.ErrRollNotFound
		}
		return entities.VoterRoll{}, r.logError("ballot_repo_get_roll_failed", err,
			"roll_id", strings.TrimSpace(rollID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) AddEntry(ctx context.Context, entry entities.RollEntry) error {
	row := rollEntryModelFromEntity(entry)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "voter_number"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("ballot_repo_add_entry_failed", create.Error,
			"voter_number", row.VoterNumber,
			"roll_id", row.RollID,
		)
	}
	if create.RowsAffected == 0 {
		return domainerrors.ErrVoterEnrolled
	}
	return nil
}

func (r *Repository) GetEntry(ctx context.Context, voterNumber string) (entities.RollEntry, error) {
	var row rollEntryModel
	err := r.db.WithContext(ctx).
		Where("voter_number = ?", strings.TrimSpace(voterNumber)).
		Where("archived = ?", false).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RollEntry{}, domainerrors.ErrVoterNotFound
		}
		return entities.RollEntry{}, r.logError("ballot_repo_get_entry_failed", err,
			"voter_number", strings.TrimSpace(voterNumber),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListEntries(ctx context.Context, rollID string) ([]entities.RollEntry, error) {
	var rows []rollEntryModel
	if err := r.db.WithContext(ctx).
		Where("roll_id = ?", strings.TrimSpace(rollID)).
		Where("archived = ?", false).
		Order("voter_number ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ballot_repo_list_entries_failed", err,
			"roll_id", strings.TrimSpace(rollID),
		)
	}
	items := make([]entities.RollEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("ballot_repo_append_outbox_marshal_failed", err,
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
		return r.logError("ballot_repo_append_outbox_insert_failed", create.Error,
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
		return r.logError("ballot_repo_append_outbox_load_existing_failed", err,
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
		return nil, r.logError("ballot_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("ballot_repo_mark_outbox_published_failed", result.Error,
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
		"module", "polling-operations/ballot-box",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ballot repository operation failed", fields...)
	return err
}

type electionProjectionModel struct {
	ID     string `gorm:"column:id;primaryKey"`
	Status string `gorm:"column:status"`
}

func (electionProjectionModel) TableName() string {
	return "elections"
}

type stationProjectionModel struct {
	ID              string `gorm:"column:id;primaryKey"`
	ElectionID      string `gorm:"column:election_id"`
	Status          string `gorm:"column:status"`
	RegisteredCount int    `gorm:"column:registered_count"`
}

func (stationProjectionModel) TableName() string {
	return "stations"
}

type stationTallyModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	StationID    string    `gorm:"column:station_id"`
	ElectionID   string    `gorm:"column:election_id"`
	VotersCount  int       `gorm:"column:voters_count"`
	SpoiledCount int       `gorm:"column:spoiled_count"`
	BlankCount   int       `gorm:"column:blank_count"`
	ValidCount   int       `gorm:"column:valid_count"`
	Validated    bool      `gorm:"column:validated"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (stationTallyModel) TableName() string {
	return "station_tallies"
}

type candidateVoteCountModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	TallyID     string    `gorm:"column:tally_id"`
	CandidacyID string    `gorm:"column:candidacy_id"`
	Votes       int       `gorm:"column:votes"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (candidateVoteCountModel) TableName() string {
	return "candidate_vote_counts"
}

type voterRollModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	StationID string    `gorm:"column:station_id"`
	Code      string    `gorm:"column:code"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voterRollModel) TableName() string {
	return "voter_rolls"
}

func (m voterRollModel) toEntity() entities.VoterRoll {
	return entities.VoterRoll{
		RollID:    m.ID,
		StationID: m.StationID,
		Code:      m.Code,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type rollEntryModel struct {
	VoterNumber string    `gorm:"column:voter_number;primaryKey"`
	RollID      string    `gorm:"column:roll_id"`
	StationID   string    `gorm:"column:station_id"`
	HasVoted    bool      `gorm:"column:has_voted"`
	Archived    bool      `gorm:"column:archived"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (rollEntryModel) TableName() string {
	return "roll_entries"
}

func rollEntryModelFromEntity(entry entities.RollEntry) rollEntryModel {
	row := rollEntryModel{
		VoterNumber: strings.TrimSpace(entry.VoterNumber),
		RollID:      strings.TrimSpace(entry.RollID),
		StationID:   strings.TrimSpace(entry.StationID),
		HasVoted:    entry.HasVoted,
		Archived:    entry.Archived,
		CreatedAt:   entry.CreatedAt.UTC(),
		UpdatedAt:   entry.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m rollEntryModel) toEntity() entities.RollEntry {
	return entities.RollEntry{
		VoterNumber: m.VoterNumber,
		RollID:      m.RollID,
		StationID:   m.StationID,
		HasVoted:    m.HasVoted,
		Archived:    m.Archived,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type voteJournalModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	StationID   string    `gorm:"column:station_id"`
	VoterNumber string    `gorm:"column:voter_number"`
	SourceIP    string    `gorm:"column:source_ip"`
	CastAt      time.Time `gorm:"column:cast_at"`
}

func (voteJournalModel) TableName() string {
	return "vote_journal"
}

func (m voteJournalModel) toEntity() entities.VoteLogEntry {
	return entities.VoteLogEntry{
		EntryID:     m.ID,
		StationID:   m.StationID,
		VoterNumber: m.VoterNumber,
		CastAt:      m.CastAt.UTC(),
		SourceIP:    m.SourceIP,
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
	return "ballot_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isDomainError(err error) bool {
	switch {
	case errors.Is(err, domainerrors.ErrVoterNotFound),
		errors.Is(err, domainerrors.ErrWrongStation),
		errors.Is(err, domainerrors.ErrAlreadyVoted),
		errors.Is(err, domainerrors.ErrNoOpenTally),
		errors.Is(err, domainerrors.ErrCandidateNotOnBallot),
		errors.Is(err, domainerrors.ErrInvalidCastInput),
		errors.Is(err, domainerrors.ErrConflict):
		return true
	}
	return false
}

var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.RollRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
