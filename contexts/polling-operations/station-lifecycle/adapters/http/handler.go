package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"scrutin/contexts/polling-operations/station-lifecycle/application/commands"
	"scrutin/contexts/polling-operations/station-lifecycle/application/queries"
	"scrutin/contexts/polling-operations/station-lifecycle/domain/entities"
	httptransport "scrutin/contexts/polling-operations/station-lifecycle/transport/http"
)

type Handler struct {
	Elections commands.ElectionUseCase
	Stations  commands.StationUseCase
	Status    queries.StatusUseCase
	Logger    *slog.Logger
}

func (h Handler) ScheduleElectionHandler(
	ctx context.Context,
	req httptransport.ScheduleElectionRequest,
) (httptransport.ElectionResponse, error) {
	scheduledFor := time.Time{}
	if req.ScheduledFor != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err == nil {
			scheduledFor = parsed
		}
	}
	election, err := h.Elections.ScheduleElection(ctx, commands.ScheduleElectionCommand{
		Name:         req.Name,
		ScheduledFor: scheduledFor,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) StartElectionHandler(ctx context.Context, electionID string) (httptransport.StartElectionResponse, error) {
	result, err := h.Elections.StartElection(ctx, electionID)
	if err != nil {
		return httptransport.StartElectionResponse{}, err
	}
	return httptransport.StartElectionResponse{
		ElectionID:    result.ElectionID,
		Status:        string(entities.ElectionStatusRunning),
		StartedAt:     result.StartedAt.UTC().Format(time.RFC3339),
		StationsReady: result.StationsReady,
	}, nil
}

func (h Handler) FinishElectionHandler(ctx context.Context, electionID string) error {
	return h.Elections.FinishElection(ctx, electionID)
}

func (h Handler) CancelElectionHandler(
	ctx context.Context,
	electionID string,
	req httptransport.CancelElectionRequest,
) error {
	return h.Elections.CancelElection(ctx, commands.CancelElectionCommand{
		ElectionID: electionID,
		Reason:     req.Reason,
	})
}

func (h Handler) ElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	election, err := h.Status.Election(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElection(election), nil
}

func (h Handler) RegisterStationHandler(
	ctx context.Context,
	req httptransport.RegisterStationRequest,
) (httptransport.StationResponse, error) {
	station, err := h.Stations.RegisterStation(ctx, commands.RegisterStationCommand{
		ElectionID:      req.ElectionID,
		Name:            req.Name,
		CommuneID:       req.CommuneID,
		RegisteredCount: req.RegisteredCount,
	})
	if err != nil {
		return httptransport.StationResponse{}, err
	}
	return mapStation(station), nil
}

func (h Handler) OpenStationHandler(
	ctx context.Context,
	stationID string,
	req httptransport.OpenStationRequest,
) error {
	return h.Stations.OpenStation(ctx, commands.OpenStationCommand{
		ElectionID: req.ElectionID,
		StationID:  stationID,
	})
}

func (h Handler) CloseStationHandler(
	ctx context.Context,
	stationID string,
	req httptransport.CloseStationRequest,
) (httptransport.CloseStationResponse, error) {
	result, err := h.Stations.CloseStation(ctx, commands.CloseStationCommand{
		ElectionID: req.ElectionID,
		StationID:  stationID,
		Counts: entities.FinalCounts{
			Voters:       req.Voters,
			Spoiled:      req.Spoiled,
			Blank:        req.Blank,
			Observations: req.Observations,
		},
	})
	if err != nil {
		return httptransport.CloseStationResponse{}, err
	}
	return httptransport.CloseStationResponse{
		StationID:  result.StationID,
		ValidCount: result.ValidCount,
		MinutesRef: result.MinutesRef,
		ClosedAt:   result.ClosedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) StationStatusHandler(ctx context.Context, stationID string) (httptransport.StationResponse, error) {
	station, err := h.Status.StationStatus(ctx, stationID)
	if err != nil {
		return httptransport.StationResponse{}, err
	}
	return mapStation(station), nil
}

func (h Handler) ElectionStationsHandler(ctx context.Context, electionID string) (httptransport.StationListResponse, error) {
	stations, err := h.Status.ElectionStations(ctx, electionID)
	if err != nil {
		return httptransport.StationListResponse{}, err
	}
	items := make([]httptransport.StationResponse, 0, len(stations))
	for _, station := range stations {
		items = append(items, mapStation(station))
	}
	return httptransport.StationListResponse{
		ElectionID: electionID,
		Items:      items,
	}, nil
}

func mapElection(election entities.Election) httptransport.ElectionResponse {
	return httptransport.ElectionResponse{
		ElectionID:   election.ElectionID,
		Name:         election.Name,
		Status:       string(election.Status),
		StartedAt:    formatOptional(election.StartedAt),
		EndedAt:      formatOptional(election.EndedAt),
		CancelReason: election.CancelReason,
	}
}

func mapStation(station entities.Station) httptransport.StationResponse {
	return httptransport.StationResponse{
		StationID:       station.StationID,
		ElectionID:      station.ElectionID,
		Name:            station.Name,
		CommuneID:       station.CommuneID,
		RegisteredCount: station.RegisteredCount,
		Status:          string(station.Status),
		OpenedAt:        formatOptional(station.OpenedAt),
		ClosedAt:        formatOptional(station.ClosedAt),
		MinutesRef:      station.MinutesRef,
	}
}

func formatOptional(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
