package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/governance/dao-engine/adapters/memory"
	"agora/contexts/governance/dao-engine/domain/entities"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
)

func seedProposal(t *testing.T, store *memory.Store, proposal entities.Proposal, ballots []entities.Ballot) {
	t.Helper()
	base := proposal
	base.YesWeight, base.NoWeight = 0, 0
	base.YesVoters, base.NoVoters = 0, 0
	if err := store.CreateProposal(context.Background(), base); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}
	for _, ballot := range ballots {
		if err := store.RecordBallot(context.Background(), ballot); err != nil {
			t.Fatalf("record ballot failed: %v", err)
		}
	}
}

func TestResultCountsVotersAndWeights(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedProposal(t, store, entities.Proposal{ProposalID: 1, Description: "budget"}, []entities.Ballot{
		{BallotID: "b-1", ProposalID: 1, Voter: "member-1", Support: true, Weight: 100, CastAt: now},
		{BallotID: "b-2", ProposalID: 1, Voter: "admin-1", Support: false, Weight: 100, CastAt: now.Add(time.Second)},
	})

	uc := ResultUseCase{Proposals: store}
	tally, err := uc.Result(context.Background(), 1)
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	if tally.TotalVoters != 2 {
		t.Fatalf("expected 2 total voters, got %d", tally.TotalVoters)
	}
	if tally.YesVoters != 1 || tally.NoVoters != 1 {
		t.Fatalf("expected a 1/1 split, got %+v", tally)
	}
	if tally.TotalWeight != 200 || tally.YesWeight != 100 || tally.NoWeight != 100 {
		t.Fatalf("unexpected weights %+v", tally)
	}
}

func TestApprovalRequiresStrictMajority(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedProposal(t, store, entities.Proposal{ProposalID: 1, Description: "tied"}, []entities.Ballot{
		{BallotID: "b-1", ProposalID: 1, Voter: "member-1", Support: true, Weight: 100, CastAt: now},
		{BallotID: "b-2", ProposalID: 1, Voter: "admin-1", Support: false, Weight: 100, CastAt: now},
	})
	seedProposal(t, store, entities.Proposal{ProposalID: 2, Description: "carried"}, []entities.Ballot{
		{BallotID: "b-3", ProposalID: 2, Voter: "member-1", Support: true, Weight: 200, CastAt: now},
		{BallotID: "b-4", ProposalID: 2, Voter: "admin-1", Support: false, Weight: 100, CastAt: now},
	})

	uc := ResultUseCase{Proposals: store}

	tied, err := uc.IsApproved(context.Background(), 1)
	if err != nil {
		t.Fatalf("approval for tie failed: %v", err)
	}
	if tied {
		t.Fatalf("a tie must not be approved")
	}

	carried, err := uc.IsApproved(context.Background(), 2)
	if err != nil {
		t.Fatalf("approval for majority failed: %v", err)
	}
	if !carried {
		t.Fatalf("strict weighted majority must be approved")
	}
}

func TestResultUnknownProposal(t *testing.T) {
	uc := ResultUseCase{Proposals: memory.NewStore()}
	_, err := uc.Result(context.Background(), 42)
	if !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}
}

func TestBallotsOrderedByCastTime(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	seedProposal(t, store, entities.Proposal{ProposalID: 1, Description: "ordered"}, []entities.Ballot{
		{BallotID: "b-2", ProposalID: 1, Voter: "zeta", Support: true, Weight: 5, CastAt: now.Add(2 * time.Second)},
		{BallotID: "b-1", ProposalID: 1, Voter: "alpha", Support: false, Weight: 5, CastAt: now},
	})

	uc := ResultUseCase{Proposals: store}
	ballots, err := uc.Ballots(context.Background(), 1)
	if err != nil {
		t.Fatalf("ballots failed: %v", err)
	}
	if len(ballots) != 2 {
		t.Fatalf("expected 2 ballots, got %d", len(ballots))
	}
	if ballots[0].Voter != "alpha" || ballots[1].Voter != "zeta" {
		t.Fatalf("expected cast order alpha, zeta; got %s, %s", ballots[0].Voter, ballots[1].Voter)
	}
}

func TestLedgerQueries(t *testing.T) {
	store := memory.NewStore()
	if err := store.SaveMember(context.Background(), entities.Member{Address: "member-1", IsMember: true}); err != nil {
		t.Fatalf("save member failed: %v", err)
	}
	if _, err := store.CreditShares(context.Background(), "member-1", 30, time.Now().UTC()); err != nil {
		t.Fatalf("credit shares failed: %v", err)
	}

	uc := LedgerUseCase{Members: store, Admin: "admin-1"}

	shares, err := uc.Shares(context.Background(), "member-1")
	if err != nil || shares != 30 {
		t.Fatalf("expected 30 shares, got %d err=%v", shares, err)
	}
	shares, err = uc.Shares(context.Background(), "unknown")
	if err != nil || shares != 0 {
		t.Fatalf("unknown address reads zero shares, got %d err=%v", shares, err)
	}

	ok, err := uc.IsMemberOrAdmin(context.Background(), "admin-1")
	if err != nil || !ok {
		t.Fatalf("admin must pass membership check, got %v err=%v", ok, err)
	}
	ok, err = uc.IsMemberOrAdmin(context.Background(), "member-1")
	if err != nil || !ok {
		t.Fatalf("member must pass membership check, got %v err=%v", ok, err)
	}
	ok, err = uc.IsMemberOrAdmin(context.Background(), "stranger")
	if err != nil || ok {
		t.Fatalf("stranger must fail membership check, got %v err=%v", ok, err)
	}

	total, err := uc.TotalShares(context.Background())
	if err != nil || total != 30 {
		t.Fatalf("expected total 30, got %d err=%v", total, err)
	}
}
