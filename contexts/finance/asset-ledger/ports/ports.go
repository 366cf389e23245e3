package ports

import (
	"context"
	"time"

	"agora/contexts/finance/asset-ledger/domain/entities"
)

type LedgerRepository interface {
	BalanceOf(ctx context.Context, address string) (uint64, error)
	Allowance(ctx context.Context, owner string, spender string) (uint64, error)
	ListAccounts(ctx context.Context) ([]entities.Account, error)
	Mint(ctx context.Context, to string, amount uint64, at time.Time) (entities.Account, error)
	// Transfer moves amount between balances atomically; it fails with
	// ErrInsufficientFunds without partial movement.
	Transfer(ctx context.Context, from string, to string, amount uint64, at time.Time) error
	Approve(ctx context.Context, owner string, spender string, amount uint64, at time.Time) error
	// TransferFrom debits both the allowance and the owner balance in one
	// atomic step.
	TransferFrom(ctx context.Context, spender string, from string, to string, amount uint64, at time.Time) error
}

type Clock interface {
	Now() time.Time
}
