package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "scrutin/contexts/polling-operations/station-lifecycle/application"
	"scrutin/contexts/polling-operations/station-lifecycle/domain/entities"
	domainerrors "scrutin/contexts/polling-operations/station-lifecycle/domain/errors"
	"scrutin/contexts/polling-operations/station-lifecycle/ports"
)

type RegisterStationCommand struct {
	ElectionID      string
	Name            string
	CommuneID       string
	RegisteredCount int
}

type OpenStationCommand struct {
	ElectionID string
	StationID  string
}

type CloseStationCommand struct {
	ElectionID string
	StationID  string
	Counts     entities.FinalCounts
}

type CloseStationResult struct {
	StationID  string
	ValidCount int
	MinutesRef string
	ClosedAt   time.Time
}

type StationUseCase struct {
	Stations  ports.StationRepository
	Elections ports.ElectionRepository
	Minutes   ports.MinutesRenderer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc StationUseCase) RegisterStation(ctx context.Context, cmd RegisterStationCommand) (entities.Station, error) {
	logger := application.ResolveLogger(uc.Logger)

	electionID := strings.TrimSpace(cmd.ElectionID)
	name := strings.TrimSpace(cmd.Name)
	if electionID == "" || name == "" || cmd.RegisteredCount < 0 {
		return entities.Station{}, domainerrors.ErrInvalidStationInput
	}
	if _, err := uc.Elections.GetElection(ctx, electionID); err != nil {
		return entities.Station{}, err
	}

	stationID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Station{}, err
	}
	now := uc.now()
	station := entities.Station{
		StationID:       stationID,
		ElectionID:      electionID,
		Name:            name,
		CommuneID:       strings.TrimSpace(cmd.CommuneID),
		RegisteredCount: cmd.RegisteredCount,
		Status:          entities.StationStatusInactive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Stations.SaveStation(ctx, station); err != nil {
		return entities.Station{}, err
	}

	logger.Info("station registered",
		"event", "station_registered",
		"module", "polling-operations/station-lifecycle",
		"layer", "application",
		"station_id", stationID,
		"election_id", electionID,
	)
	return station, nil
}

func (uc StationUseCase) OpenStation(ctx context.Context, cmd OpenStationCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	electionID := strings.TrimSpace(cmd.ElectionID)
	stationID := strings.TrimSpace(cmd.StationID)
	if electionID == "" || stationID == "" {
		return domainerrors.ErrInvalidStationInput
	}

	election, err := uc.Elections.GetElection(ctx, electionID)
	if err != nil {
		return err
	}
	if election.Status != entities.ElectionStatusRunning {
		return domainerrors.ErrElectionNotRunning
	}

	station, err := uc.Stations.GetStation(ctx, stationID)
	if err != nil {
		return err
	}
	if station.ElectionID != electionID {
		return domainerrors.ErrStationNotFound
	}

	if err := uc.Stations.MarkOpen(ctx, stationID, uc.now()); err != nil {
		return err
	}

	logger.Info("station opened",
		"event", "station_opened",
		"module", "polling-operations/station-lifecycle",
		"layer", "application",
		"station_id", stationID,
		"election_id", electionID,
	)
	return nil
}

// CloseStation validates the reported counts, renders the minutes, then
// freezes everything. The renderer runs before any state flips: a render
// failure leaves the station open and the tally untouched.
func (uc StationUseCase) CloseStation(ctx context.Context, cmd CloseStationCommand) (CloseStationResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	electionID := strings.TrimSpace(cmd.ElectionID)
	stationID := strings.TrimSpace(cmd.StationID)
	if electionID == "" || stationID == "" {
		return CloseStationResult{}, domainerrors.ErrInvalidStationInput
	}

	station, err := uc.Stations.GetStation(ctx, stationID)
	if err != nil {
		return CloseStationResult{}, err
	}
	if station.ElectionID != electionID {
		return CloseStationResult{}, domainerrors.ErrStationNotFound
	}
	if station.Status != entities.StationStatusOpen {
		return CloseStationResult{}, domainerrors.ErrStationNotOpen
	}

	counts := cmd.Counts
	if counts.Voters < 0 || counts.Spoiled < 0 || counts.Blank < 0 {
		return CloseStationResult{}, domainerrors.ErrInvalidCounts
	}
	if counts.Spoiled+counts.Blank > counts.Voters {
		return CloseStationResult{}, domainerrors.ErrInvalidCounts
	}
	if counts.Voters > station.RegisteredCount {
		return CloseStationResult{}, domainerrors.ErrVotersExceedRoll
	}

	closedAt := uc.now()
	valid := counts.ValidCount()

	minutesRef, err := uc.Minutes.Render(ctx, ports.MinutesData{
		StationID:    stationID,
		StationName:  station.Name,
		ElectionID:   electionID,
		Voters:       counts.Voters,
		Spoiled:      counts.Spoiled,
		Blank:        counts.Blank,
		Valid:        valid,
		Observations: strings.TrimSpace(counts.Observations),
		ClosedAt:     closedAt,
	})
	if err != nil {
		logger.Error("minutes rendering failed",
			"event", "station_close_minutes_failed",
			"module", "polling-operations/station-lifecycle",
			"layer", "application",
			"station_id", stationID,
			"error", err.Error(),
		)
		return CloseStationResult{}, domainerrors.ErrMinutesRender
	}

	record := ports.CloseRecord{
		StationID:    stationID,
		Voters:       counts.Voters,
		Spoiled:      counts.Spoiled,
		Blank:        counts.Blank,
		Valid:        valid,
		Observations: strings.TrimSpace(counts.Observations),
		MinutesRef:   minutesRef,
		ClosedAt:     closedAt,
	}
	if err := uc.Stations.FinalizeClose(ctx, record); err != nil {
		return CloseStationResult{}, err
	}

	logger.Info("station closed",
		"event", "station_closed",
		"module", "polling-operations/station-lifecycle",
		"layer", "application",
		"station_id", stationID,
		"election_id", electionID,
		"voters", counts.Voters,
		"valid", valid,
	)
	return CloseStationResult{
		StationID:  stationID,
		ValidCount: valid,
		MinutesRef: minutesRef,
		ClosedAt:   closedAt,
	}, nil
}

func (uc StationUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
