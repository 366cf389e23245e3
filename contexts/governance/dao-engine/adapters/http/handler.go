package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/governance/dao-engine/application/commands"
	"agora/contexts/governance/dao-engine/application/queries"
	"agora/contexts/governance/dao-engine/domain/entities"
	httptransport "agora/contexts/governance/dao-engine/transport/http"
)

type Handler struct {
	Membership commands.MembershipUseCase
	Shares     commands.ShareUseCase
	Proposals  commands.ProposalUseCase
	Votes      commands.VoteUseCase
	Results    queries.ResultUseCase
	Ledger     queries.LedgerUseCase

	AdminAddress    string
	TreasuryAddress string
	GovernanceType  uint
	PurchaseRate    uint64

	Logger *slog.Logger
}

func (h Handler) AddMemberHandler(
	ctx context.Context,
	caller string,
	req httptransport.AddMemberRequest,
) (httptransport.MemberResponse, error) {
	member, err := h.Membership.AddMember(ctx, commands.AddMemberCommand{
		Caller:  caller,
		Address: req.Address,
	})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{
		Address:      member.Address,
		IsMember:     member.IsMember,
		IsAdmin:      member.IsAdmin,
		ShareBalance: member.ShareBalance,
	}, nil
}

func (h Handler) BuySharesHandler(
	ctx context.Context,
	caller string,
	req httptransport.BuySharesRequest,
) (httptransport.BuySharesResponse, error) {
	result, err := h.Shares.BuyShares(ctx, commands.BuySharesCommand{
		Caller: caller,
		Amount: req.Amount,
	})
	if err != nil {
		return httptransport.BuySharesResponse{}, err
	}
	return httptransport.BuySharesResponse{
		Address:      result.Member.Address,
		AmountSpent:  result.AmountSpent,
		Purchased:    result.Purchased,
		ShareBalance: result.Member.ShareBalance,
	}, nil
}

func (h Handler) AddSharesHandler(
	ctx context.Context,
	caller string,
	req httptransport.AddSharesRequest,
) (httptransport.MemberResponse, error) {
	member, err := h.Shares.AddShares(ctx, caller, req.Amount)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{
		Address:      member.Address,
		IsMember:     member.IsMember,
		IsAdmin:      member.IsAdmin,
		ShareBalance: member.ShareBalance,
	}, nil
}

func (h Handler) GiveSharesHandler(
	ctx context.Context,
	caller string,
	req httptransport.GiveSharesRequest,
) (httptransport.MemberResponse, error) {
	member, err := h.Shares.GiveShares(ctx, commands.GrantSharesCommand{
		Caller:  caller,
		Address: req.Address,
		Amount:  req.Amount,
	})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{
		Address:      member.Address,
		IsMember:     member.IsMember,
		IsAdmin:      member.IsAdmin,
		ShareBalance: member.ShareBalance,
	}, nil
}

func (h Handler) SharesHandler(ctx context.Context, address string) (httptransport.SharesResponse, error) {
	shares, err := h.Ledger.Shares(ctx, address)
	if err != nil {
		return httptransport.SharesResponse{}, err
	}
	return httptransport.SharesResponse{
		Address: address,
		Shares:  shares,
	}, nil
}

func (h Handler) ListMembersHandler(ctx context.Context) (httptransport.MemberListResponse, error) {
	members, err := h.Ledger.ListMembers(ctx)
	if err != nil {
		return httptransport.MemberListResponse{}, err
	}
	items := make([]httptransport.MemberResponse, 0, len(members))
	for _, member := range members {
		items = append(items, httptransport.MemberResponse{
			Address:      member.Address,
			IsMember:     member.IsMember,
			IsAdmin:      member.IsAdmin,
			ShareBalance: member.ShareBalance,
		})
	}
	return httptransport.MemberListResponse{Items: items}, nil
}

func (h Handler) MembershipCheckHandler(ctx context.Context, address string) (httptransport.MembershipCheckResponse, error) {
	ok, err := h.Ledger.IsMemberOrAdmin(ctx, address)
	if err != nil {
		return httptransport.MembershipCheckResponse{}, err
	}
	return httptransport.MembershipCheckResponse{
		Address:         address,
		IsMemberOrAdmin: ok,
	}, nil
}

func (h Handler) AddProposalHandler(
	ctx context.Context,
	caller string,
	req httptransport.AddProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.AddProposal(ctx, commands.AddProposalCommand{
		Caller:      caller,
		ProposalID:  req.ProposalID,
		Description: req.Description,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Results.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context) (httptransport.ProposalListResponse, error) {
	proposals, err := h.Results.ListProposals(ctx)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, mapProposal(proposal))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

func (h Handler) VoteHandler(
	ctx context.Context,
	caller string,
	proposalID uint64,
	req httptransport.VoteRequest,
) (httptransport.BallotResponse, error) {
	ballot, err := h.Votes.Vote(ctx, commands.VoteCommand{
		Caller:     caller,
		ProposalID: proposalID,
		Support:    req.Support,
	})
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return httptransport.BallotResponse{
		BallotID:   ballot.BallotID,
		ProposalID: ballot.ProposalID,
		Voter:      ballot.Voter,
		Support:    ballot.Support,
		Weight:     ballot.Weight,
	}, nil
}

func (h Handler) ListBallotsHandler(ctx context.Context, proposalID uint64) (httptransport.BallotListResponse, error) {
	ballots, err := h.Results.Ballots(ctx, proposalID)
	if err != nil {
		return httptransport.BallotListResponse{}, err
	}
	items := make([]httptransport.BallotResponse, 0, len(ballots))
	for _, ballot := range ballots {
		items = append(items, httptransport.BallotResponse{
			BallotID:   ballot.BallotID,
			ProposalID: ballot.ProposalID,
			Voter:      ballot.Voter,
			Support:    ballot.Support,
			Weight:     ballot.Weight,
		})
	}
	return httptransport.BallotListResponse{Items: items}, nil
}

func (h Handler) ResultHandler(ctx context.Context, proposalID uint64) (httptransport.ResultResponse, error) {
	tally, err := h.Results.Result(ctx, proposalID)
	if err != nil {
		return httptransport.ResultResponse{}, err
	}
	return httptransport.ResultResponse{
		ProposalID:  tally.ProposalID,
		TotalVoters: tally.TotalVoters,
		YesVoters:   tally.YesVoters,
		NoVoters:    tally.NoVoters,
		TotalWeight: tally.TotalWeight,
		YesWeight:   tally.YesWeight,
		NoWeight:    tally.NoWeight,
	}, nil
}

func (h Handler) ApprovalHandler(ctx context.Context, proposalID uint64) (httptransport.ApprovalResponse, error) {
	approved, err := h.Results.IsApproved(ctx, proposalID)
	if err != nil {
		return httptransport.ApprovalResponse{}, err
	}
	return httptransport.ApprovalResponse{
		ProposalID: proposalID,
		Approved:   approved,
	}, nil
}

func (h Handler) EngineInfoHandler(ctx context.Context) (httptransport.EngineInfoResponse, error) {
	total, err := h.Ledger.TotalShares(ctx)
	if err != nil {
		return httptransport.EngineInfoResponse{}, err
	}
	return httptransport.EngineInfoResponse{
		AdminAddress:    h.AdminAddress,
		TreasuryAddress: h.TreasuryAddress,
		GovernanceType:  h.GovernanceType,
		PurchaseRate:    h.PurchaseRate,
		TotalShares:     total,
	}, nil
}

func mapProposal(proposal entities.Proposal) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ProposalID:  proposal.ProposalID,
		Description: proposal.Description,
		Proposer:    proposal.Proposer,
		YesWeight:   proposal.YesWeight,
		NoWeight:    proposal.NoWeight,
		YesVoters:   proposal.YesVoters,
		NoVoters:    proposal.NoVoters,
	}
}
