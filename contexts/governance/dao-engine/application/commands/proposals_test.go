package commands

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/governance/dao-engine/adapters/memory"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
)

func newProposalFixture(t *testing.T) (*memory.Store, ProposalUseCase) {
	t.Helper()
	store := memory.NewStore()
	membership := MembershipUseCase{
		Members: store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Admin:   "admin-1",
	}
	if _, err := membership.AddMember(context.Background(), AddMemberCommand{Caller: "admin-1", Address: "member-1"}); err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	return store, ProposalUseCase{
		Members:   store,
		Proposals: store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Admin:     "admin-1",
	}
}

func TestAddProposalMemberAndAdmin(t *testing.T) {
	_, uc := newProposalFixture(t)

	first, err := uc.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "member-1",
		ProposalID:  1,
		Description: "rotate the treasury keys",
	})
	if err != nil {
		t.Fatalf("member proposal failed: %v", err)
	}
	if first.Proposer != "member-1" {
		t.Fatalf("expected proposer member-1, got %s", first.Proposer)
	}
	if first.YesWeight != 0 || first.NoWeight != 0 || first.YesVoters != 0 || first.NoVoters != 0 {
		t.Fatalf("new proposal must open with a zero tally, got %+v", first)
	}

	if _, err := uc.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "admin-1",
		ProposalID:  2,
		Description: "adopt quarterly budget",
	}); err != nil {
		t.Fatalf("admin proposal failed: %v", err)
	}
}

func TestAddProposalNonMemberRejected(t *testing.T) {
	_, uc := newProposalFixture(t)

	_, err := uc.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "stranger-1",
		ProposalID:  1,
		Description: "anything",
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAddProposalBlankDescription(t *testing.T) {
	_, uc := newProposalFixture(t)

	_, err := uc.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "member-1",
		ProposalID:  1,
		Description: "   ",
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddProposalDuplicateID(t *testing.T) {
	_, uc := newProposalFixture(t)

	if _, err := uc.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "member-1",
		ProposalID:  7,
		Description: "first",
	}); err != nil {
		t.Fatalf("first proposal failed: %v", err)
	}
	_, err := uc.AddProposal(context.Background(), AddProposalCommand{
		Caller:      "member-1",
		ProposalID:  7,
		Description: "second",
	})
	if !errors.Is(err, domainerrors.ErrDuplicateProposal) {
		t.Fatalf("expected ErrDuplicateProposal, got %v", err)
	}
}
