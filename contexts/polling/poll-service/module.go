package pollservice

import (
	"log/slog"

	httpadapter "ballotbox/contexts/polling/poll-service/adapters/http"
	"ballotbox/contexts/polling/poll-service/adapters/memory"
	"ballotbox/contexts/polling/poll-service/application/commands"
	"ballotbox/contexts/polling/poll-service/application/queries"
	"ballotbox/contexts/polling/poll-service/domain/entities"
	"ballotbox/contexts/polling/poll-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Polls  ports.PollRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	pollUseCase := commands.PollUseCase{
		Polls:  deps.Polls,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	queryUseCase := queries.PollQueryUseCase{
		Polls: deps.Polls,
	}
	return Module{
		Handler: httpadapter.Handler{
			Polls:   pollUseCase,
			Queries: queryUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Poll, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Polls:  store,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
