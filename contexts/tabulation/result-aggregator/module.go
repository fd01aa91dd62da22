package resultaggregator

import (
	"log/slog"

	httpadapter "scrutin/contexts/tabulation/result-aggregator/adapters/http"
	"scrutin/contexts/tabulation/result-aggregator/adapters/memory"
	"scrutin/contexts/tabulation/result-aggregator/application/queries"
	"scrutin/contexts/tabulation/result-aggregator/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Aggregates queries.AggregateUseCase
	Store      *memory.Store
}

type Dependencies struct {
	Results ports.ResultsReader
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	aggregateUseCase := queries.AggregateUseCase{
		Results: deps.Results,
	}
	return Module{
		Handler: httpadapter.Handler{
			Aggregates: aggregateUseCase,
			Logger:     deps.Logger,
		},
		Aggregates: aggregateUseCase,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Results: store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
