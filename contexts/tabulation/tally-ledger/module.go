package tallyledger

import (
	"log/slog"

	httpadapter "scrutin/contexts/tabulation/tally-ledger/adapters/http"
	"scrutin/contexts/tabulation/tally-ledger/adapters/memory"
	"scrutin/contexts/tabulation/tally-ledger/application/commands"
	"scrutin/contexts/tabulation/tally-ledger/application/queries"
	"scrutin/contexts/tabulation/tally-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Ledger  commands.LedgerUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Tallies        ports.TallyRepository
	Stations       ports.StationReader
	Clock          ports.Clock
	SupervisorRole string
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ledgerUseCase := commands.LedgerUseCase{
		Tallies:        deps.Tallies,
		Clock:          deps.Clock,
		SupervisorRole: deps.SupervisorRole,
		Logger:         deps.Logger,
	}
	statisticsUseCase := queries.StatisticsUseCase{
		Tallies:  deps.Tallies,
		Stations: deps.Stations,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ledger:     ledgerUseCase,
			Statistics: statisticsUseCase,
			Logger:     deps.Logger,
		},
		Ledger: ledgerUseCase,
	}
}

func NewInMemoryModule(supervisorRole string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Tallies:        store,
		Stations:       store,
		Clock:          store,
		SupervisorRole: supervisorRole,
		Logger:         logger,
	})
	module.Store = store
	return module
}
