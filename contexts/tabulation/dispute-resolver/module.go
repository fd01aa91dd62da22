package disputeresolver

import (
	"log/slog"

	httpadapter "scrutin/contexts/tabulation/dispute-resolver/adapters/http"
	"scrutin/contexts/tabulation/dispute-resolver/adapters/memory"
	"scrutin/contexts/tabulation/dispute-resolver/application/commands"
	"scrutin/contexts/tabulation/dispute-resolver/application/queries"
	"scrutin/contexts/tabulation/dispute-resolver/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Disputes ports.DisputeRepository
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	disputeUseCase := commands.DisputeUseCase{
		Disputes: deps.Disputes,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	historyUseCase := queries.HistoryUseCase{
		Disputes: deps.Disputes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Disputes: disputeUseCase,
			History:  historyUseCase,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Disputes: store,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
