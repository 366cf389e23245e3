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

// AddMemberCommand registers an address as a member. Administrator only.
type AddMemberCommand struct {
	Caller  string
	Address string
}

// MembershipUseCase owns membership mutations. The administrator identity is
// captured at construction and checked at the top of each privileged call.
type MembershipUseCase struct {
	Members ports.MemberRepository
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Admin   string
	Logger  *slog.Logger
}

// AddMember marks the address as a member. Re-adding an existing member is a
// no-op, not an error.
func (uc MembershipUseCase) AddMember(ctx context.Context, cmd AddMemberCommand) (entities.Member, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	address := strings.TrimSpace(cmd.Address)

	if address == "" {
		return entities.Member{}, domainerrors.ErrInvalidInput
	}
	if !strings.EqualFold(caller, strings.TrimSpace(uc.Admin)) {
		logger.Warn("member add rejected",
			"event", "governance_member_add_unauthorized",
			"module", "governance/dao-engine",
			"layer", "application",
			"caller", caller,
			"address", address,
		)
		return entities.Member{}, domainerrors.ErrUnauthorized
	}

	now := uc.now()
	member, found, err := uc.Members.GetMember(ctx, address)
	if err != nil {
		return entities.Member{}, err
	}
	if found && member.IsMember {
		return member, nil
	}
	if !found {
		member = entities.Member{
			Address:  address,
			JoinedAt: now,
		}
	}
	member.IsMember = true
	if strings.EqualFold(address, strings.TrimSpace(uc.Admin)) {
		member.IsAdmin = true
	}
	member.UpdatedAt = now
	if err := uc.Members.SaveMember(ctx, member); err != nil {
		return entities.Member{}, err
	}
	if err := uc.appendMemberEvent(ctx, "member.added", member, now); err != nil {
		return entities.Member{}, err
	}

	logger.Info("member added",
		"event", "governance_member_added",
		"module", "governance/dao-engine",
		"layer", "application",
		"address", member.Address,
		"caller", caller,
	)
	return member, nil
}

func (uc MembershipUseCase) appendMemberEvent(
	ctx context.Context,
	eventType string,
	member entities.Member,
	occurredAt time.Time,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(eventID, eventType, member.Address, occurredAt, map[string]any{
		"address":       member.Address,
		"is_member":     member.IsMember,
		"share_balance": member.ShareBalance,
		"occurred_at":   occurredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc MembershipUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
