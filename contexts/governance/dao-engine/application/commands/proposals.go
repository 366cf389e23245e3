package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "agora/contexts/governance/dao-engine/application"
	"agora/contexts/governance/dao-engine/domain/entities"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
	"agora/contexts/governance/dao-engine/ports"
)

// AddProposalCommand opens a proposal for weighted voting. Any member or the
// administrator may call it; the id must not collide with an existing one.
type AddProposalCommand struct {
	Caller      string
	ProposalID  uint64
	Description string
}

type ProposalUseCase struct {
	Members   ports.MemberRepository
	Proposals ports.ProposalRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Admin     string
	Logger    *slog.Logger
}

func (uc ProposalUseCase) AddProposal(ctx context.Context, cmd AddProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" || strings.TrimSpace(cmd.Description) == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidInput
	}

	if !strings.EqualFold(caller, strings.TrimSpace(uc.Admin)) {
		member, found, err := uc.Members.GetMember(ctx, caller)
		if err != nil {
			return entities.Proposal{}, err
		}
		if !found || !member.IsMember {
			logger.Warn("proposal rejected",
				"event", "governance_proposal_unauthorized",
				"module", "governance/dao-engine",
				"layer", "application",
				"caller", caller,
				"proposal_id", cmd.ProposalID,
			)
			return entities.Proposal{}, domainerrors.ErrUnauthorized
		}
	}

	now := uc.now()
	proposal := entities.Proposal{
		ProposalID:  cmd.ProposalID,
		Description: strings.TrimSpace(cmd.Description),
		Proposer:    caller,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Proposals.CreateProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	if err := uc.appendProposalEvent(ctx, proposal, now); err != nil {
		return entities.Proposal{}, err
	}

	logger.Info("proposal created",
		"event", "governance_proposal_created",
		"module", "governance/dao-engine",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"proposer", proposal.Proposer,
	)
	return proposal, nil
}

func (uc ProposalUseCase) appendProposalEvent(
	ctx context.Context,
	proposal entities.Proposal,
	occurredAt time.Time,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(
		eventID,
		"proposal.created",
		strconv.FormatUint(proposal.ProposalID, 10),
		occurredAt,
		map[string]any{
			"proposal_id": proposal.ProposalID,
			"description": proposal.Description,
			"proposer":    proposal.Proposer,
			"occurred_at": occurredAt.UTC().Format(time.RFC3339),
		},
	)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc ProposalUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
