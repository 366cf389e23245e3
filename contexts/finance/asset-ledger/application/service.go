package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/finance/asset-ledger/domain/entities"
	domainerrors "agora/contexts/finance/asset-ledger/domain/errors"
	"agora/contexts/finance/asset-ledger/ports"
)

// Service orchestrates asset-ledger operations. Balance arithmetic lives in
// the repository so each mutation commits or fails as a whole.
type Service struct {
	Ledger ports.LedgerRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (s Service) Mint(ctx context.Context, to string, amount uint64) (entities.Account, error) {
	to = strings.TrimSpace(to)
	if to == "" || amount == 0 {
		return entities.Account{}, domainerrors.ErrInvalidInput
	}
	account, err := s.Ledger.Mint(ctx, to, amount, s.now())
	if err != nil {
		return entities.Account{}, err
	}
	s.logger().Info("asset minted",
		"event", "asset_minted",
		"module", "finance/asset-ledger",
		"layer", "application",
		"address", account.Address,
		"amount", amount,
		"balance", account.Balance,
	)
	return account, nil
}

func (s Service) Transfer(ctx context.Context, from string, to string, amount uint64) error {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" || amount == 0 {
		return domainerrors.ErrInvalidInput
	}
	if err := s.Ledger.Transfer(ctx, from, to, amount, s.now()); err != nil {
		return err
	}
	s.logger().Info("asset transferred",
		"event", "asset_transferred",
		"module", "finance/asset-ledger",
		"layer", "application",
		"from", from,
		"to", to,
		"amount", amount,
	)
	return nil
}

func (s Service) Approve(ctx context.Context, owner string, spender string, amount uint64) error {
	owner = strings.TrimSpace(owner)
	spender = strings.TrimSpace(spender)
	if owner == "" || spender == "" {
		return domainerrors.ErrInvalidInput
	}
	if err := s.Ledger.Approve(ctx, owner, spender, amount, s.now()); err != nil {
		return err
	}
	s.logger().Info("asset allowance approved",
		"event", "asset_allowance_approved",
		"module", "finance/asset-ledger",
		"layer", "application",
		"owner", owner,
		"spender", spender,
		"amount", amount,
	)
	return nil
}

// TransferFrom pulls funds from the owner to the destination on behalf of an
// approved spender. The allowance and the balance are debited together.
func (s Service) TransferFrom(ctx context.Context, spender string, from string, to string, amount uint64) error {
	spender = strings.TrimSpace(spender)
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if spender == "" || from == "" || to == "" || amount == 0 {
		return domainerrors.ErrInvalidInput
	}
	if err := s.Ledger.TransferFrom(ctx, spender, from, to, amount, s.now()); err != nil {
		s.logger().Warn("asset pull rejected",
			"event", "asset_transfer_from_rejected",
			"module", "finance/asset-ledger",
			"layer", "application",
			"spender", spender,
			"from", from,
			"to", to,
			"amount", amount,
			"error", err.Error(),
		)
		return err
	}
	s.logger().Info("asset pulled by spender",
		"event", "asset_transfer_from",
		"module", "finance/asset-ledger",
		"layer", "application",
		"spender", spender,
		"from", from,
		"to", to,
		"amount", amount,
	)
	return nil
}

func (s Service) BalanceOf(ctx context.Context, address string) (uint64, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	return s.Ledger.BalanceOf(ctx, address)
}

func (s Service) Allowance(ctx context.Context, owner string, spender string) (uint64, error) {
	owner = strings.TrimSpace(owner)
	spender = strings.TrimSpace(spender)
	if owner == "" || spender == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	return s.Ledger.Allowance(ctx, owner, spender)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
