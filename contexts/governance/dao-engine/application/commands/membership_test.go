package commands

import (
	"context"
	"errors"
	"testing"

	"agora/contexts/governance/dao-engine/adapters/memory"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
)

func TestAddMemberAdminOnly(t *testing.T) {
	store := memory.NewStore()
	uc := MembershipUseCase{
		Members: store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Admin:   "admin-1",
	}

	_, err := uc.AddMember(context.Background(), AddMemberCommand{
		Caller:  "stranger-1",
		Address: "member-1",
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	member, err := uc.AddMember(context.Background(), AddMemberCommand{
		Caller:  "admin-1",
		Address: "member-1",
	})
	if err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	if !member.IsMember {
		t.Fatalf("expected is_member true")
	}
	if member.ShareBalance != 0 {
		t.Fatalf("new member must start with zero shares, got %d", member.ShareBalance)
	}
	if member.IsAdmin {
		t.Fatalf("a plain member must not carry the admin flag, got %+v", member)
	}
}

func TestAddMemberSelfEnrollmentSetsAdminFlag(t *testing.T) {
	store := memory.NewStore()
	uc := MembershipUseCase{
		Members: store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		Admin:   "admin-1",
	}

	admin, err := uc.AddMember(context.Background(), AddMemberCommand{Caller: "admin-1", Address: "admin-1"})
	if err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	if !admin.IsMember || !admin.IsAdmin {
		t.Fatalf("self-enrolled administrator must carry both flags, got %+v", admin)
	}
}

func TestAddMemberReplayIsNoop(t *testing.T) {
	store := memory.NewStore()
	uc := MembershipUseCase{
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

	if _, err := uc.AddMember(context.Background(), AddMemberCommand{Caller: "admin-1", Address: "member-1"}); err != nil {
		t.Fatalf("add member failed: %v", err)
	}
	if _, err := shares.GiveShares(context.Background(), GrantSharesCommand{
		Caller:  "admin-1",
		Address: "member-1",
		Amount:  50,
	}); err != nil {
		t.Fatalf("give shares failed: %v", err)
	}

	again, err := uc.AddMember(context.Background(), AddMemberCommand{Caller: "admin-1", Address: "member-1"})
	if err != nil {
		t.Fatalf("re-add member failed: %v", err)
	}
	if again.ShareBalance != 50 {
		t.Fatalf("re-add must not touch share balance, got %d", again.ShareBalance)
	}
	total, err := store.TotalShares(context.Background())
	if err != nil {
		t.Fatalf("total shares failed: %v", err)
	}
	if total != 50 {
		t.Fatalf("expected total shares 50, got %d", total)
	}
}

func TestAddMemberBlankAddress(t *testing.T) {
	store := memory.NewStore()
	uc := MembershipUseCase{
		Members: store,
		Clock:   store,
		IDGen:   store,
		Admin:   "admin-1",
	}
	_, err := uc.AddMember(context.Background(), AddMemberCommand{Caller: "admin-1", Address: "   "})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
