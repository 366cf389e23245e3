package assetledger

import (
	"log/slog"

	httpadapter "agora/contexts/finance/asset-ledger/adapters/http"
	"agora/contexts/finance/asset-ledger/adapters/memory"
	"agora/contexts/finance/asset-ledger/application"
	"agora/contexts/finance/asset-ledger/ports"
)

// Module exposes the asset-ledger entrypoints wired against a ledger
// repository.
type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ledger ports.LedgerRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Ledger: deps.Ledger,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the in-memory store for local
// runs and tests.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger: store,
		Logger: logger,
	})
	module.Store = store
	return module
}
