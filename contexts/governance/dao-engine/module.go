package daoengine

import (
	"log/slog"
	"strings"

	httpadapter "agora/contexts/governance/dao-engine/adapters/http"
	"agora/contexts/governance/dao-engine/adapters/memory"
	"agora/contexts/governance/dao-engine/application/commands"
	"agora/contexts/governance/dao-engine/application/queries"
	"agora/contexts/governance/dao-engine/domain/entities"
	"agora/contexts/governance/dao-engine/ports"
)

// defaultAssetDecimals keeps base-unit math inside uint64 while preserving
// the fixed one-share-per-0.01-unit purchase ratio.
const defaultAssetDecimals = 6

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Members   ports.MemberRepository
	Proposals ports.ProposalRepository
	Assets    ports.AssetLedger
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator

	// AdminAddress is the single privileged identity, fixed at construction
	// and never transferable.
	AdminAddress    string
	TreasuryAddress string
	// GovernanceType is stored for future governance variants; it branches
	// no logic in this engine.
	GovernanceType uint
	AssetDecimals  uint
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	admin := strings.TrimSpace(deps.AdminAddress)
	treasury := strings.TrimSpace(deps.TreasuryAddress)
	if treasury == "" {
		treasury = "agora-treasury"
	}
	decimals := deps.AssetDecimals
	if decimals == 0 {
		decimals = defaultAssetDecimals
	}
	rate := entities.PurchaseRate(decimals)

	membership := commands.MembershipUseCase{
		Members: deps.Members,
		Outbox:  deps.Outbox,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Admin:   admin,
		Logger:  deps.Logger,
	}
	shares := commands.ShareUseCase{
		Members:  deps.Members,
		Assets:   deps.Assets,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Admin:    admin,
		Treasury: treasury,
		Rate:     rate,
		Logger:   deps.Logger,
	}
	proposals := commands.ProposalUseCase{
		Members:   deps.Members,
		Proposals: deps.Proposals,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Admin:     admin,
		Logger:    deps.Logger,
	}
	votes := commands.VoteUseCase{
		Members:   deps.Members,
		Proposals: deps.Proposals,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	results := queries.ResultUseCase{
		Proposals: deps.Proposals,
	}
	ledger := queries.LedgerUseCase{
		Members: deps.Members,
		Admin:   admin,
	}
	return Module{
		Handler: httpadapter.Handler{
			Membership:      membership,
			Shares:          shares,
			Proposals:       proposals,
			Votes:           votes,
			Results:         results,
			Ledger:          ledger,
			AdminAddress:    admin,
			TreasuryAddress: treasury,
			GovernanceType:  deps.GovernanceType,
			PurchaseRate:    rate,
			Logger:          deps.Logger,
		},
	}
}

// NewInMemoryModule wires the engine against its memory store for tests and
// in-process composition. The asset ledger stays a caller-supplied
// collaborator.
func NewInMemoryModule(admin string, assets ports.AssetLedger, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Members:      store,
		Proposals:    store,
		Assets:       assets,
		Outbox:       store,
		Clock:        store,
		IDGen:        store,
		AdminAddress: admin,
		Logger:       logger,
	})
	module.Store = store
	return module
}
