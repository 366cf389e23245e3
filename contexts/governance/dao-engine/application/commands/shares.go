package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/dao-engine/application"
	"agora/contexts/governance/dao-engine/domain/entities"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
	"agora/contexts/governance/dao-engine/ports"
)

// BuySharesCommand purchases shares at the fixed rate, funded by a pull from
// the external asset ledger.
type BuySharesCommand struct {
	Caller string
	Amount uint64
}

// GrantSharesCommand credits shares directly, bypassing the asset ledger.
// Administrator only.
type GrantSharesCommand struct {
	Caller  string
	Address string
	Amount  uint64
}

// BuySharesResult reports the converted share count alongside the updated
// member snapshot.
type BuySharesResult struct {
	Member      entities.Member
	Purchased   uint64
	AmountSpent uint64
}

// ShareUseCase owns share issuance. Two minting paths exist: market-rate
// purchase through the asset ledger and direct administrative grants used to
// seed initial voting power.
type ShareUseCase struct {
	Members  ports.MemberRepository
	Assets   ports.AssetLedger
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Admin    string
	Treasury string
	// Rate is the purchase cost per share in asset base units.
	Rate   uint64
	Logger *slog.Logger
}

// BuyShares converts amount asset base units into shares by floor division
// against the fixed rate. The asset transfer happens before any share credit
// and the whole operation is all-or-nothing: a failed pull leaves every
// balance untouched.
func (uc ShareUseCase) BuyShares(ctx context.Context, cmd BuySharesCommand) (BuySharesResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" {
		return BuySharesResult{}, domainerrors.ErrInvalidInput
	}

	isAdmin := strings.EqualFold(caller, strings.TrimSpace(uc.Admin))
	member, found, err := uc.Members.GetMember(ctx, caller)
	if err != nil {
		return BuySharesResult{}, err
	}
	if !isAdmin && (!found || !member.IsMember) {
		logger.Warn("share purchase rejected",
			"event", "governance_share_purchase_unauthorized",
			"module", "governance/dao-engine",
			"layer", "application",
			"caller", caller,
		)
		return BuySharesResult{}, domainerrors.ErrUnauthorized
	}

	rate := uc.Rate
	if rate == 0 {
		rate = entities.PurchaseRate(6)
	}
	purchased := cmd.Amount / rate
	if purchased == 0 {
		return BuySharesResult{}, domainerrors.ErrInvalidAmount
	}

	if uc.Assets == nil {
		return BuySharesResult{}, domainerrors.ErrInvalidInput
	}
	if err := uc.Assets.TransferFrom(ctx, caller, strings.TrimSpace(uc.Treasury), cmd.Amount); err != nil {
		logger.Warn("share purchase funding failed",
			"event", "governance_share_purchase_transfer_failed",
			"module", "governance/dao-engine",
			"layer", "application",
			"caller", caller,
			"amount", cmd.Amount,
			"error", err.Error(),
		)
		return BuySharesResult{}, err
	}

	now := uc.now()
	credited, err := uc.Members.CreditShares(ctx, caller, purchased, now)
	if err != nil {
		return BuySharesResult{}, err
	}
	credited, err = uc.ensureAdminFlag(ctx, credited)
	if err != nil {
		return BuySharesResult{}, err
	}
	if err := uc.appendShareEvent(ctx, "shares.purchased", credited, purchased, now, map[string]any{
		"amount_spent": cmd.Amount,
		"rate":         rate,
	}); err != nil {
		return BuySharesResult{}, err
	}

	logger.Info("shares purchased",
		"event", "governance_shares_purchased",
		"module", "governance/dao-engine",
		"layer", "application",
		"caller", caller,
		"amount", cmd.Amount,
		"purchased", purchased,
	)
	return BuySharesResult{
		Member:      credited,
		Purchased:   purchased,
		AmountSpent: cmd.Amount,
	}, nil
}

// AddShares is the administrator's self-credit path.
func (uc ShareUseCase) AddShares(ctx context.Context, caller string, amount uint64) (entities.Member, error) {
	return uc.grant(ctx, GrantSharesCommand{
		Caller:  caller,
		Address: strings.TrimSpace(uc.Admin),
		Amount:  amount,
	})
}

// GiveShares credits shares directly to the named address without any asset
// transfer. Administrator only.
func (uc ShareUseCase) GiveShares(ctx context.Context, cmd GrantSharesCommand) (entities.Member, error) {
	return uc.grant(ctx, cmd)
}

func (uc ShareUseCase) grant(ctx context.Context, cmd GrantSharesCommand) (entities.Member, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	address := strings.TrimSpace(cmd.Address)

	if address == "" || cmd.Amount == 0 {
		return entities.Member{}, domainerrors.ErrInvalidInput
	}
	if !strings.EqualFold(caller, strings.TrimSpace(uc.Admin)) {
		logger.Warn("share grant rejected",
			"event", "governance_share_grant_unauthorized",
			"module", "governance/dao-engine",
			"layer", "application",
			"caller", caller,
			"address", address,
		)
		return entities.Member{}, domainerrors.ErrUnauthorized
	}

	now := uc.now()
	member, err := uc.Members.CreditShares(ctx, address, cmd.Amount, now)
	if err != nil {
		return entities.Member{}, err
	}
	member, err = uc.ensureAdminFlag(ctx, member)
	if err != nil {
		return entities.Member{}, err
	}
	if err := uc.appendShareEvent(ctx, "shares.granted", member, cmd.Amount, now, nil); err != nil {
		return entities.Member{}, err
	}

	logger.Info("shares granted",
		"event", "governance_shares_granted",
		"module", "governance/dao-engine",
		"layer", "application",
		"address", member.Address,
		"amount", cmd.Amount,
		"balance", member.ShareBalance,
	)
	return member, nil
}

// ensureAdminFlag marks the administrator's row the first time issuance
// materializes it. SaveMember never touches balances, so the credited
// snapshot stays valid.
func (uc ShareUseCase) ensureAdminFlag(ctx context.Context, member entities.Member) (entities.Member, error) {
	if member.IsAdmin || !strings.EqualFold(member.Address, strings.TrimSpace(uc.Admin)) {
		return member, nil
	}
	member.IsAdmin = true
	if err := uc.Members.SaveMember(ctx, member); err != nil {
		return entities.Member{}, err
	}
	return member, nil
}

func (uc ShareUseCase) appendShareEvent(
	ctx context.Context,
	eventType string,
	member entities.Member,
	amount uint64,
	occurredAt time.Time,
	metadata map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"address":       member.Address,
		"shares":        amount,
		"share_balance": member.ShareBalance,
		"occurred_at":   occurredAt.UTC().Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newGovernanceEnvelope(eventID, eventType, member.Address, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ShareUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
