package queries

import (
	"context"
	"strings"

	"scrutin/contexts/polling-operations/station-lifecycle/domain/entities"
	"scrutin/contexts/polling-operations/station-lifecycle/ports"
)

type StatusUseCase struct {
	Stations  ports.StationRepository
	Elections ports.ElectionRepository
}

func (uc StatusUseCase) StationStatus(ctx context.Context, stationID string) (entities.Station, error) {
	return uc.Stations.GetStation(ctx, strings.TrimSpace(stationID))
}

func (uc StatusUseCase) Election(ctx context.Context, electionID string) (entities.Election, error) {
	return uc.Elections.GetElection(ctx, strings.TrimSpace(electionID))
}

func (uc StatusUseCase) ElectionStations(ctx context.Context, electionID string) ([]entities.Station, error) {
	return uc.Stations.ListStationsByElection(ctx, strings.TrimSpace(electionID))
}
