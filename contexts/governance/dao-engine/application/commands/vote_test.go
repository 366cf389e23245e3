package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"agora/contexts/governance/dao-engine/adapters/memory"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
)

type voteFixture struct {
	store     *memory.Store
	shares    ShareUseCase
	proposals ProposalUseCase
	votes     VoteUseCase
}

func newVoteFixture(t *testing.T) voteFixture {
	t.Helper()
	store := memory.NewStore()
	membership := MembershipUseCase{
		Members: store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Admin:   "admin-1",
	}
	shares := ShareUseCase{
		Members: store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Admin:   "admin-1",
		Rate:    10000,
	}
	proposals := ProposalUseCase{
		Members:   store,
		Proposals: store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Admin:     "admin-1",
	}
	votes := VoteUseCase{
		Members:   store,
		Proposals: store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
	}

	for _, address := range []string{"member-1", "member-2"} {
		if _, err := membership.AddMember(context.Background(), AddMemberCommand{Caller: "admin-1", Address: address}); err != nil {
			t.Fatalf("add member %s failed: %v", address, err)
		}
	}
	if _, err := proposals.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "admin-1",
		ProposalID:  1,
		Description: "fund the relay upgrade",
	}); err != nil {
		t.Fatalf("add proposal failed: %v", err)
	}
	return voteFixture{store: store, shares: shares, proposals: proposals, votes: votes}
}

func (f voteFixture) grant(t *testing.T, address string, amount uint64) {
	t.Helper()
	if _, err := f.shares.GiveShares(context.Background(), GrantSharesCommand{
		Caller:  "admin-1",
		Address: address,
		Amount:  amount,
	}); err != nil {
		t.Fatalf("grant to %s failed: %v", address, err)
	}
}

func TestVoteWithoutSharesRejected(t *testing.T) {
	f := newVoteFixture(t)

	_, err := f.votes.Vote(context.Background(), VoteCommand{
		Caller:     "member-1",
		ProposalID: 1,
		Support:    true,
	})
	if !errors.Is(err, domainerrors.ErrNoShares) {
		t.Fatalf("expected ErrNoShares, got %v", err)
	}

	proposal, err := f.store.GetProposal(context.Background(), 1)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if proposal.YesVoters != 0 || proposal.YesWeight != 0 {
		t.Fatalf("rejected vote must not tally, got %+v", proposal)
	}
}

func TestVoteUnknownProposal(t *testing.T) {
	f := newVoteFixture(t)
	f.grant(t, "member-1", 10)

	_, err := f.votes.Vote(context.Background(), VoteCommand{
		Caller:     "member-1",
		ProposalID: 404,
		Support:    true,
	})
	if !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}
}

func TestVoteTwiceRejected(t *testing.T) {
	f := newVoteFixture(t)
	f.grant(t, "member-1", 10)

	if _, err := f.votes.Vote(context.Background(), VoteCommand{
		Caller:     "member-1",
		ProposalID: 1,
		Support:    true,
	}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	_, err := f.votes.Vote(context.Background(), VoteCommand{
		Caller:     "member-1",
		ProposalID: 1,
		Support:    false,
	})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	proposal, err := f.store.GetProposal(context.Background(), 1)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if proposal.YesVoters != 1 || proposal.NoVoters != 0 {
		t.Fatalf("double vote must not tally twice, got %+v", proposal)
	}
}

func TestVoteWeightFrozenAtCastTime(t *testing.T) {
	f := newVoteFixture(t)
	f.grant(t, "member-1", 10)

	ballot, err := f.votes.Vote(context.Background(), VoteCommand{
		Caller:     "member-1",
		ProposalID: 1,
		Support:    true,
	})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if ballot.Weight != 10 {
		t.Fatalf("expected weight 10, got %d", ballot.Weight)
	}

	// Later share changes must not move the recorded tally.
	f.grant(t, "member-1", 990)
	proposal, err := f.store.GetProposal(context.Background(), 1)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if proposal.YesWeight != 10 {
		t.Fatalf("expected frozen yes weight 10, got %d", proposal.YesWeight)
	}
}

func TestVoteConcurrentVotersConserveWeight(t *testing.T) {
	store := memory.NewStore()
	membership := MembershipUseCase{Members: store, Outbox: store, Clock: store, IDGen: store, Admin: "admin-1"}
	shares := ShareUseCase{Members: store, Outbox: store, Clock: store, IDGen: store, Admin: "admin-1", Rate: 10000}
	proposals := ProposalUseCase{Members: store, Proposals: store, Outbox: store, Clock: store, IDGen: store, Admin: "admin-1"}
	votes := VoteUseCase{Members: store, Proposals: store, Outbox: store, Clock: store, IDGen: store}

	const voters = 16
	for i := 0; i < voters; i++ {
		address := fmt.Sprintf("member-%d", i)
		if _, err := membership.AddMember(context.Background(), AddMemberCommand{Caller: "admin-1", Address: address}); err != nil {
			t.Fatalf("add member %s failed: %v", address, err)
		}
		if _, err := shares.GiveShares(context.Background(), GrantSharesCommand{Caller: "admin-1", Address: address, Amount: 10}); err != nil {
			t.Fatalf("grant to %s failed: %v", address, err)
		}
	}
	if _, err := proposals.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "admin-1",
		ProposalID:  1,
		Description: "parallel tally",
	}); err != nil {
		t.Fatalf("add proposal failed: %v", err)
	}

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := votes.Vote(context.Background(), VoteCommand{
				Caller:     fmt.Sprintf("member-%d", i),
				ProposalID: 1,
				Support:    true,
			})
			if err != nil {
				t.Errorf("vote %d failed: %v", i, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	proposal, err := store.GetProposal(context.Background(), 1)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if proposal.YesVoters != voters || proposal.YesWeight != voters*10 {
		t.Fatalf("every cast weight must land in the tally, got %+v", proposal)
	}
	ballots, err := store.ListBallots(context.Background(), 1)
	if err != nil {
		t.Fatalf("list ballots failed: %v", err)
	}
	if len(ballots) != voters {
		t.Fatalf("expected %d ballots, got %d", voters, len(ballots))
	}
}

func TestVoteAccumulatesPerVoterWeights(t *testing.T) {
	f := newVoteFixture(t)
	f.grant(t, "member-1", 10)
	f.grant(t, "member-2", 25)

	if _, err := f.votes.Vote(context.Background(), VoteCommand{Caller: "member-1", ProposalID: 1, Support: true}); err != nil {
		t.Fatalf("member-1 vote failed: %v", err)
	}
	if _, err := f.votes.Vote(context.Background(), VoteCommand{Caller: "member-2", ProposalID: 1, Support: false}); err != nil {
		t.Fatalf("member-2 vote failed: %v", err)
	}

	proposal, err := f.store.GetProposal(context.Background(), 1)
	if err != nil {
		t.Fatalf("get proposal failed: %v", err)
	}
	if proposal.YesWeight != 10 || proposal.NoWeight != 25 {
		t.Fatalf("unexpected weights %+v", proposal)
	}
	if proposal.YesVoters != 1 || proposal.NoVoters != 1 {
		t.Fatalf("unexpected voter counts %+v", proposal)
	}
}
