package ballotbox

import (
	"log/slog"

	httpadapter "scrutin/contexts/polling-operations/ballot-box/adapters/http"
	"scrutin/contexts/polling-operations/ballot-box/adapters/memory"
	"scrutin/contexts/polling-operations/ballot-box/application/commands"
	"scrutin/contexts/polling-operations/ballot-box/application/queries"
	"scrutin/contexts/polling-operations/ballot-box/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ballots ports.BallotRepository
	Roll    ports.RollRepository
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	castUseCase := commands.CastUseCase{
		Ballots: deps.Ballots,
		Roll:    deps.Roll,
		Outbox:  deps.Outbox,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	rollUseCase := commands.RollUseCase{
		Roll:    deps.Roll,
		Ballots: deps.Ballots,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	journalUseCase := queries.JournalUseCase{
		Ballots: deps.Ballots,
		Roll:    deps.Roll,
	}
	return Module{
		Handler: httpadapter.Handler{
			Casts:   castUseCase,
			Rolls:   rollUseCase,
			Journal: journalUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ballots: store,
		Roll:    store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
