package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"scrutin/contexts/polling-operations/station-lifecycle/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/station-lifecycle/domain/errors"
	"scrutin/contexts/polling-operations/station-lifecycle/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":          row.Name,
			"status":        row.Status,
			"scheduled_for": row.ScheduledFor,
			"cancel_reason": row.CancelReason,
			"archived":      row.Archived,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("station_repo_save_election_failed", create.Error,
			"election_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		Where("archived = ?", false).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("station_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), nil
}

// ApplyStart flips planned to running and seeds the zero tallies and
// candidate vote lines inside one transaction. The conditional status update
// is the guard: a concurrent start sees zero rows and fails.
func (r *Repository) ApplyStart(ctx context.Context, electionID string, startedAt time.Time) (int, error) {
	electionID = strings.TrimSpace(electionID)
	seeded := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flip := tx.Model(&electionModel{}).
			Where("id = ?", electionID).
			Where("status = ?", string(entities.ElectionStatusPlanned)).
			Where("archived = ?", false).
			Updates(map[string]any{
				"status":     string(entities.ElectionStatusRunning),
				"started_at": startedAt.UTC(),
				"updated_at": startedAt.UTC(),
			})
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			var existing electionModel
			lookup := tx.Where("id = ?", electionID).
				Where("archived = ?", false).
				First(&existing).
				Error
			if errors.Is(lookup, gorm.ErrRecordNotFound) {
				return domainerrors.ErrElectionNotFound
			}
			if lookup != nil {
				return lookup
			}
			return domainerrors.ErrElectionNotPlanned
		}

		var stations []stationModel
		if err := tx.Where("election_id = ?", electionID).
			Where("archived = ?", false).
			Order("id ASC").
			Find(&stations).Error; err != nil {
			return err
		}

		var candidacies []candidacyModel
		if err := tx.Where("election_id = ?", electionID).
			Where("approved = ?", true).
			Order("id ASC").
			Find(&candidacies).Error; err != nil {
			return err
		}

		for _, station := range stations {
			tally := stationTallyModel{
				ID:         uuid.NewString(),
				StationID:  station.ID,
				ElectionID: electionID,
				CreatedAt:  startedAt.UTC(),
				UpdatedAt:  startedAt.UTC(),
			}
			if err := tx.Create(&tally).Error; err != nil {
				return err
			}
			for _, candidacy := range candidacies {
				line := candidateVoteCountModel{
					ID:          uuid.NewString(),
					TallyID:     tally.ID,
					CandidacyID: candidacy.ID,
					UpdatedAt:   startedAt.UTC(),
				}
				if err := tx.Create(&line).Error; err != nil {
					return err
				}
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		if isStateError(err) {
			return 0, err
		}
		return 0, r.logError("station_repo_apply_start_failed", err,
			"election_id", electionID,
		)
	}
	return seeded, nil
}

func (r *Repository) ApplyFinish(ctx context.Context, electionID string, endedAt time.Time) error {
	electionID = strings.TrimSpace(electionID)
	flip := r.db.WithContext(ctx).Model(&electionModel{}).
		Where("id = ?", electionID).
		Where("status = ?", string(entities.ElectionStatusRunning)).
		Where("archived = ?", false).
		Updates(map[string]any{
			"status":     string(entities.ElectionStatusFinished),
			"ended_at":   endedAt.UTC(),
			"updated_at": endedAt.UTC(),
		})
	if flip.Error != nil {
		return r.logError("station_repo_apply_finish_failed", flip.Error,
			"election_id", electionID,
		)
	}
	if flip.RowsAffected == 0 {
		return r.classifyElectionState(ctx, electionID, domainerrors.ErrElectionNotRunning)
	}
	return nil
}

func (r *Repository) ApplyCancel(ctx context.Context, electionID string, reason string, endedAt time.Time) error {
	electionID = strings.TrimSpace(electionID)
	flip := r.db.WithContext(ctx).Model(&electionModel{}).
		Where("id = ?", electionID).
		Where("status IN ?", []string{
			string(entities.ElectionStatusPlanned),
			string(entities.ElectionStatusRunning),
		}).
		Where("archived = ?", false).
		Updates(map[string]any{
			"status":        string(entities.ElectionStatusCancelled),
			"cancel_reason": strings.TrimSpace(reason),
			"ended_at":      endedAt.UTC(),
			"updated_at":    endedAt.UTC(),
		})
	if flip.Error != nil {
		return r.logError("station_repo_apply_cancel_failed", flip.Error,
			"election_id", electionID,
		)
	}
	if flip.RowsAffected == 0 {
		return r.classifyElectionState(ctx, electionID, domainerrors.ErrElectionTerminal)
	}
	return nil
}

func (r *Repository) SaveStation(ctx context.Context, station entities.Station) error {
	row := stationModelFromEntity(station)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":             row.Name,
			"commune_id":       row.CommuneID,
			"registered_count": row.RegisteredCount,
			"status":           row.Status,
			"archived":         row.Archived,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("station_repo_save_station_failed", create.Error,
			"station_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetStation(ctx context.Context, stationID string) (entities.Station, error) {
	var row stationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(stationID)).
		Where("archived = ?", false).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Station{}, domainerrors.ErrStationNotFound
		}
		return entities.Station{}, r.logError("station_repo_get_station_failed", err,
			"station_id", strings.TrimSpace(stationID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListStationsByElection(ctx context.Context, electionID string) ([]entities.Station, error) {
	var rows []stationModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("archived = ?", false).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("station_repo_list_stations_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Station, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkOpen(ctx context.Context, stationID string, openedAt time.Time) error {
	stationID = strings.TrimSpace(stationID)
	flip := r.db.WithContext(ctx).Model(&stationModel{}).
		Where("id = ?", stationID).
		Where("status = ?", string(entities.StationStatusInactive)).
		Where("archived = ?", false).
		Updates(map[string]any{
			"status":     string(entities.StationStatusOpen),
			"opened_at":  openedAt.UTC(),
			"updated_at": openedAt.UTC(),
		})
	if flip.Error != nil {
		return r.logError("station_repo_mark_open_failed", flip.Error,
			"station_id", stationID,
		)
	}
	if flip.RowsAffected == 0 {
		var existing stationModel
		lookup := r.db.WithContext(ctx).
			Where("id = ?", stationID).
			Where("archived = ?", false).
			First(&existing).
			Error
		if errors.Is(lookup, gorm.ErrRecordNotFound) {
			return domainerrors.ErrStationNotFound
		}
		if lookup != nil {
			return r.logError("station_repo_mark_open_lookup_failed", lookup,
				"station_id", stationID,
			)
		}
		if existing.Status == string(entities.StationStatusOpen) {
			return domainerrors.ErrStationAlreadyOpen
		}
		return domainerrors.ErrStationNotOpen
	}
	return nil
}

func (r *Repository) FinalizeClose(ctx context.Context, record ports.CloseRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open stationTallyModel
		lookup := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("station_id = ?", record.StationID).
			Where("validated = ?", false).
			First(&open).
			Error
		if errors.Is(lookup, gorm.ErrRecordNotFound) {
			return domainerrors.ErrNoOpenTally
		}
		if lookup != nil {
			return lookup
		}
		// Candidate votes may already be accumulated from live casting; the
		// close must not freeze a valid_count below what was counted.
		var counted int64
		if err := tx.Model(&candidateVoteCountModel{}).
			Where("tally_id = ?", open.ID).
			Select("COALESCE(SUM(votes), 0)").
			Scan(&counted).
			Error; err != nil {
			return err
		}
		if counted > int64(record.Valid) {
			return domainerrors.ErrInvalidCounts
		}

		flip := tx.Model(&stationModel{}).
			Where("id = ?", record.StationID).
			Where("status = ?", string(entities.StationStatusOpen)).
			Where("archived = ?", false).
			Updates(map[string]any{
				"status":      string(entities.StationStatusClosed),
				"closed_at":   record.ClosedAt.UTC(),
				"minutes_ref": record.MinutesRef,
				"updated_at":  record.ClosedAt.UTC(),
			})
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			var existing stationModel
			lookup := tx.Where("id = ?", record.StationID).
				Where("archived = ?", false).
				First(&existing).
				Error
			if errors.Is(lookup, gorm.ErrRecordNotFound) {
				return domainerrors.ErrStationNotFound
			}
			if lookup != nil {
				return lookup
			}
			return domainerrors.ErrStationNotOpen
		}

		freeze := tx.Model(&stationTallyModel{}).
			Where("station_id = ?", record.StationID).
			Where("validated = ?", false).
			Updates(map[string]any{
				"voters_count":  record.Voters,
				"spoiled_count": record.Spoiled,
				"blank_count":   record.Blank,
				"valid_count":   record.Valid,
				"observations":  record.Observations,
				"minutes_ref":   record.MinutesRef,
				"updated_at":    record.ClosedAt.UTC(),
			})
		if freeze.Error != nil {
			return freeze.Error
		}
		if freeze.RowsAffected == 0 {
			return domainerrors.ErrNoOpenTally
		}
		return nil
	})
	if err != nil {
		if isStateError(err) {
			return err
		}
		return r.logError("station_repo_finalize_close_failed", err,
			"station_id", strings.TrimSpace(record.StationID),
		)
	}
	return nil
}

func (r *Repository) classifyElectionState(ctx context.Context, electionID string, stateErr error) error {
	var existing electionModel
	lookup := r.db.WithContext(ctx).
		Where("id = ?", electionID).
		Where("archived = ?", false).
		First(&existing).
		Error
	if errors.Is(lookup, gorm.ErrRecordNotFound) {
		return domainerrors.ErrElectionNotFound
	}
	if lookup != nil {
		return r.logError("station_repo_election_state_lookup_failed", lookup,
			"election_id", electionID,
		)
	}
	return stateErr
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "polling-operations/station-lifecycle",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("station repository operation failed", fields...)
	return err
}

type electionModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Name         string     `gorm:"column:name"`
	Status       string     `gorm:"column:status"`
	ScheduledFor time.Time  `gorm:"column:scheduled_for"`
	StartedAt    *time.Time `gorm:"column:started_at"`
	EndedAt      *time.Time `gorm:"column:ended_at"`
	CancelReason string     `gorm:"column:cancel_reason"`
	Archived     bool       `gorm:"column:archived"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	row := electionModel{
		ID:           strings.TrimSpace(election.ElectionID),
		Name:         strings.TrimSpace(election.Name),
		Status:       string(election.Status),
		ScheduledFor: election.ScheduledFor.UTC(),
		StartedAt:    normalizeOptionalTime(election.StartedAt),
		EndedAt:      normalizeOptionalTime(election.EndedAt),
		CancelReason: strings.TrimSpace(election.CancelReason),
		Archived:     election.Archived,
		CreatedAt:    election.CreatedAt.UTC(),
		UpdatedAt:    election.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m electionModel) toEntity() entities.Election {
	return entities.Election{
		ElectionID:   m.ID,
		Name:         m.Name,
		Status:       entities.ElectionStatus(m.Status),
		ScheduledFor: m.ScheduledFor.UTC(),
		StartedAt:    normalizeOptionalTime(m.StartedAt),
		EndedAt:      normalizeOptionalTime(m.EndedAt),
		CancelReason: m.CancelReason,
		Archived:     m.Archived,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type stationModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	ElectionID      string     `gorm:"column:election_id"`
	Name            string     `gorm:"column:name"`
	CommuneID       string     `gorm:"column:commune_id"`
	RegisteredCount int        `gorm:"column:registered_count"`
	Status          string     `gorm:"column:status"`
	OpenedAt        *time.Time `gorm:"column:opened_at"`
	ClosedAt        *time.Time `gorm:"column:closed_at"`
	MinutesRef      string     `gorm:"column:minutes_ref"`
	Archived        bool       `gorm:"column:archived"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (stationModel) TableName() string {
	return "stations"
}

func stationModelFromEntity(station entities.Station) stationModel {
	row := stationModel{
		ID:              strings.TrimSpace(station.StationID),
		ElectionID:      strings.TrimSpace(station.ElectionID),
		Name:            strings.TrimSpace(station.Name),
		CommuneID:       strings.TrimSpace(station.CommuneID),
		RegisteredCount: station.RegisteredCount,
		Status:          string(station.Status),
		OpenedAt:        normalizeOptionalTime(station.OpenedAt),
		ClosedAt:        normalizeOptionalTime(station.ClosedAt),
		MinutesRef:      strings.TrimSpace(station.MinutesRef),
		Archived:        station.Archived,
		CreatedAt:       station.CreatedAt.UTC(),
		UpdatedAt:       station.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m stationModel) toEntity() entities.Station {
	return entities.Station{
		StationID:       m.ID,
		ElectionID:      m.ElectionID,
		Name:            m.Name,
		CommuneID:       m.CommuneID,
		RegisteredCount: m.RegisteredCount,
		Status:          entities.StationStatus(m.Status),
		OpenedAt:        normalizeOptionalTime(m.OpenedAt),
		ClosedAt:        normalizeOptionalTime(m.ClosedAt),
		MinutesRef:      m.MinutesRef,
		Archived:        m.Archived,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type stationTallyModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	StationID    string    `gorm:"column:station_id"`
	ElectionID   string    `gorm:"column:election_id"`
	VotersCount  int       `gorm:"column:voters_count"`
	SpoiledCount int       `gorm:"column:spoiled_count"`
	BlankCount   int       `gorm:"column:blank_count"`
	ValidCount   int       `gorm:"column:valid_count"`
	Observations string    `gorm:"column:observations"`
	MinutesRef   string    `gorm:"column:minutes_ref"`
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

type candidacyModel struct {
	ID         string `gorm:"column:id;primaryKey"`
	ElectionID string `gorm:"column:election_id"`
	Approved   bool   `gorm:"column:approved"`
}

func (candidacyModel) TableName() string {
	return "candidacies"
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

func isStateError(err error) bool {
	switch {
	case errors.Is(err, domainerrors.ErrElectionNotFound),
		errors.Is(err, domainerrors.ErrElectionNotPlanned),
		errors.Is(err, domainerrors.ErrElectionNotRunning),
		errors.Is(err, domainerrors.ErrElectionTerminal),
		errors.Is(err, domainerrors.ErrStationNotFound),
		errors.Is(err, domainerrors.ErrStationAlreadyOpen),
		errors.Is(err, domainerrors.ErrStationNotOpen),
		errors.Is(err, domainerrors.ErrNoOpenTally),
		errors.Is(err, domainerrors.ErrInvalidCounts):
		return true
	}
	return false
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.StationRepository = (*Repository)(nil)
