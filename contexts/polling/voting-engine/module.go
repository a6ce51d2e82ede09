package votingengine

import (
	"log/slog"

	httpadapter "ballotbox/contexts/polling/voting-engine/adapters/http"
	memoryadapter "ballotbox/contexts/polling/voting-engine/adapters/memory"
	"ballotbox/contexts/polling/voting-engine/application/commands"
	"ballotbox/contexts/polling/voting-engine/application/queries"
	"ballotbox/contexts/polling/voting-engine/ports"
)

// Module bundles the wired voting entry points handed to the HTTP server.
type Module struct {
	Handler httpadapter.Handler
	Store   *memoryadapter.Store
}

type Dependencies struct {
	Ledger  ports.VoteLedger
	Catalog ports.PollCatalog
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	admission := commands.AdmissionUseCase{
		Ledger:  deps.Ledger,
		Catalog: deps.Catalog,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	results := queries.ResultsUseCase{
		Ledger:  deps.Ledger,
		Catalog: deps.Catalog,
	}
	return Module{
		Handler: httpadapter.Handler{
			Admission: admission,
			Results:   results,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store. Seed
// polls and choices through the returned Store.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memoryadapter.NewStore()
	module := NewModule(Dependencies{
		Ledger:  store,
		Catalog: store,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
