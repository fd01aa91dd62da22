package stationlifecycle

import (
	"log/slog"

	httpadapter "scrutin/contexts/polling-operations/station-lifecycle/adapters/http"
	"scrutin/contexts/polling-operations/station-lifecycle/adapters/memory"
	"scrutin/contexts/polling-operations/station-lifecycle/application/commands"
	"scrutin/contexts/polling-operations/station-lifecycle/application/queries"
	"scrutin/contexts/polling-operations/station-lifecycle/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Elections ports.ElectionRepository
	Stations  ports.StationRepository
	Minutes   ports.MinutesRenderer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	electionUseCase := commands.ElectionUseCase{
		Elections: deps.Elections,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	stationUseCase := commands.StationUseCase{
		Stations:  deps.Stations,
		Elections: deps.Elections,
		Minutes:   deps.Minutes,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	statusUseCase := queries.StatusUseCase{
		Stations:  deps.Stations,
		Elections: deps.Elections,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections: electionUseCase,
			Stations:  stationUseCase,
			Status:    statusUseCase,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Elections: store,
		Stations:  store,
		Minutes:   memory.StaticMinutesRenderer{},
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
