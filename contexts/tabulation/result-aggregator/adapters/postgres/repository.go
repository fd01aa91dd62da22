package postgresadapter

import (
	"context"
	"log/slog"
	"strings"

	"scrutin/contexts/tabulation/result-aggregator/ports"

	"gorm.io/gorm"
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

func (r *Repository) ElectionExists(ctx context.Context, electionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("elections").
		Where("id = ?", strings.TrimSpace(electionID)).
		Where("archived = ?", false).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("results_repo_election_exists_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return count > 0, nil
}

func (r *Repository) ListTallyFacts(ctx context.Context, electionID string) ([]ports.TallyFact, error) {
	var rows []tallyFactRow
	err := r.db.WithContext(ctx).
		Table("station_tallies AS t").
		Select(`t.id AS tally_id, t.station_id, t.election_id,
			s.commune_id, COALESCE(c.department_id, '') AS department_id,
			COALESCE(c.region_id, '') AS region_id,
			s.registered_count, t.voters_count, t.spoiled_count,
			t.blank_count, t.valid_count, t.validated,
			(s.status = 'closed') AS reported`).
		Joins("JOIN stations AS s ON s.id = t.station_id").
		Joins("LEFT JOIN communes AS c ON c.id = s.commune_id").
		Where("t.election_id = ?", strings.TrimSpace(electionID)).
		Where("s.archived = ?", false).
		Order("t.id ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("results_repo_list_tally_facts_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]ports.TallyFact, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.TallyFact{
			TallyID:      row.TallyID,
			StationID:    row.StationID,
			ElectionID:   row.ElectionID,
			CommuneID:    row.CommuneID,
			DepartmentID: row.DepartmentID,
			RegionID:     row.RegionID,
			Registered:   row.RegisteredCount,
			Voters:       row.VotersCount,
			Spoiled:      row.SpoiledCount,
			Blank:        row.BlankCount,
			Valid:        row.ValidCount,
			Validated:    row.Validated,
			Reported:     row.Reported,
		})
	}
	return items, nil
}

func (r *Repository) ListVoteFacts(ctx context.Context, electionID string) ([]ports.CandidateVoteFact, error) {
	var rows []voteFactRow
	err := r.db.WithContext(ctx).
		Table("candidate_vote_counts AS v").
		Select("v.tally_id, v.candidacy_id, v.votes").
		Joins("JOIN station_tallies AS t ON t.id = v.tally_id").
		Where("t.election_id = ?", strings.TrimSpace(electionID)).
		Order("v.tally_id ASC, v.candidacy_id ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("results_repo_list_vote_facts_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]ports.CandidateVoteFact, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.CandidateVoteFact{
			TallyID:     row.TallyID,
			CandidacyID: row.CandidacyID,
			Votes:       row.Votes,
		})
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "tabulation/result-aggregator",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("results repository operation failed", fields...)
	return err
}

type tallyFactRow struct {
	TallyID         string `gorm:"column:tally_id"`
	StationID       string `gorm:"column:station_id"`
	ElectionID      string `gorm:"column:election_id"`
	CommuneID       string `gorm:"column:commune_id"`
	DepartmentID    string `gorm:"column:department_id"`
	RegionID        string `gorm:"column:region_id"`
	RegisteredCount int    `gorm:"column:registered_count"`
	VotersCount     int    `gorm:"column:voters_count"`
	SpoiledCount    int    `gorm:"column:spoiled_count"`
	BlankCount      int    `gorm:"column:blank_count"`
	ValidCount      int    `gorm:"column:valid_count"`
	Validated       bool   `gorm:"column:validated"`
	Reported        bool   `gorm:"column:reported"`
}

type voteFactRow struct {
	TallyID     string `gorm:"column:tally_id"`
	CandidacyID string `gorm:"column:candidacy_id"`
	Votes       int    `gorm:"column:votes"`
}

var _ ports.ResultsReader = (*Repository)(nil)
