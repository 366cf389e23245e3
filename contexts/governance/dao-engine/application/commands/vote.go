package commands

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "agora/contexts/governance/dao-engine/application"
	"agora/contexts/governance/dao-engine/domain/entities"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
	"agora/contexts/governance/dao-engine/ports"
)

// VoteCommand casts a weighted ballot on a proposal.
type VoteCommand struct {
	Caller     string
	ProposalID uint64
	Support    bool
}

// VoteUseCase enforces voting integrity: the caller's share balance at cast
// time is the recorded weight, each address votes at most once per proposal,
// and later share changes never alter cast ballots.
type VoteUseCase struct {
	Members   ports.MemberRepository
	Proposals ports.ProposalRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc VoteUseCase) Vote(ctx context.Context, cmd VoteCommand) (entities.Ballot, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.Caller)
	if caller == "" {
		return entities.Ballot{}, domainerrors.ErrInvalidInput
	}

	member, found, err := uc.Members.GetMember(ctx, caller)
	if err != nil {
		return entities.Ballot{}, err
	}
	if !found || !member.CanVote() {
		logger.Warn("vote rejected without shares",
			"event", "governance_vote_no_shares",
			"module", "governance/dao-engine",
			"layer", "application",
			"caller", caller,
			"proposal_id", cmd.ProposalID,
		)
		return entities.Ballot{}, domainerrors.ErrNoShares
	}

	if _, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID); err != nil {
		return entities.Ballot{}, err
	}
	if _, voted, err := uc.Proposals.GetBallot(ctx, cmd.ProposalID, caller); err != nil {
		return entities.Ballot{}, err
	} else if voted {
		return entities.Ballot{}, domainerrors.ErrAlreadyVoted
	}

	now := uc.now()
	ballotID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Ballot{}, err
	}
	ballot := entities.Ballot{
		BallotID:   strings.TrimSpace(ballotID),
		ProposalID: cmd.ProposalID,
		Voter:      caller,
		Support:    cmd.Support,
		Weight:     member.ShareBalance,
		CastAt:     now,
	}

	if err := uc.Proposals.RecordBallot(ctx, ballot); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			return entities.Ballot{}, domainerrors.ErrAlreadyVoted
		}
		return entities.Ballot{}, err
	}
	if err := uc.appendVoteEvent(ctx, ballot, now); err != nil {
		return entities.Ballot{}, err
	}

	logger.Info("vote cast",
		"event", "governance_vote_cast",
		"module", "governance/dao-engine",
		"layer", "application",
		"proposal_id", ballot.ProposalID,
		"voter", ballot.Voter,
		"support", ballot.Support,
		"weight", ballot.Weight,
	)
	return ballot, nil
}

func (uc VoteUseCase) appendVoteEvent(ctx context.Context, ballot entities.Ballot, occurredAt time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(
		eventID,
		"vote.cast",
		strconv.FormatUint(ballot.ProposalID, 10),
		occurredAt,
		map[string]any{
			"ballot_id":   ballot.BallotID,
			"proposal_id": ballot.ProposalID,
			"voter":       ballot.Voter,
			"support":     ballot.Support,
			"weight":      ballot.Weight,
			"occurred_at": occurredAt.UTC().Format(time.RFC3339),
		},
	)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
