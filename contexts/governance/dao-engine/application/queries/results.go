package queries

import (
	"context"
	"sort"
	"strings"

	"agora/contexts/governance/dao-engine/domain/entities"
	"agora/contexts/governance/dao-engine/ports"
)

// ResultUseCase is the read side over proposals: snapshots, running tallies
// and the approval verdict. All methods are side-effect free.
type ResultUseCase struct {
	Proposals ports.ProposalRepository
}

func (uc ResultUseCase) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error) {
	return uc.Proposals.GetProposal(ctx, proposalID)
}

func (uc ResultUseCase) ListProposals(ctx context.Context) ([]entities.Proposal, error) {
	items, err := uc.Proposals.ListProposals(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProposalID < items[j].ProposalID
	})
	return items, nil
}

// Result reports the running tally with both voter counts and weights as
// named fields.
func (uc ResultUseCase) Result(ctx context.Context, proposalID uint64) (entities.Tally, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return entities.Tally{}, err
	}
	return entities.TallyOf(proposal), nil
}

// IsApproved applies the strict weighted-majority rule to the current tally.
// A tie is not approved.
func (uc ResultUseCase) IsApproved(ctx context.Context, proposalID uint64) (bool, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return false, err
	}
	return proposal.Approved(), nil
}

// Ballots lists the audit trail of cast votes for a proposal.
func (uc ResultUseCase) Ballots(ctx context.Context, proposalID uint64) ([]entities.Ballot, error) {
	if _, err := uc.Proposals.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	items, err := uc.Proposals.ListBallots(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].Voter < items[j].Voter
		}
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

// LedgerUseCase is the read side over members and the share supply.
type LedgerUseCase struct {
	Members ports.MemberRepository
	Admin   string
}

func (uc LedgerUseCase) Shares(ctx context.Context, address string) (uint64, error) {
	member, found, err := uc.Members.GetMember(ctx, strings.TrimSpace(address))
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return member.ShareBalance, nil
}

func (uc LedgerUseCase) IsMemberOrAdmin(ctx context.Context, address string) (bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return false, nil
	}
	if strings.EqualFold(address, strings.TrimSpace(uc.Admin)) {
		return true, nil
	}
	member, found, err := uc.Members.GetMember(ctx, address)
	if err != nil {
		return false, err
	}
	return found && member.IsMember, nil
}

func (uc LedgerUseCase) TotalShares(ctx context.Context) (uint64, error) {
	return uc.Members.TotalShares(ctx)
}

func (uc LedgerUseCase) ListMembers(ctx context.Context) ([]entities.Member, error) {
	items, err := uc.Members.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Address < items[j].Address
	})
	return items, nil
}
