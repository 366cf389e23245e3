package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "agora/contexts/finance/asset-ledger/domain/errors"
)

func TestTransferFromIsAtomic(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	if _, err := store.Mint(context.Background(), "owner-1", 100, now); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := store.Approve(context.Background(), "owner-1", "spender-1", 1000, now); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Allowance covers the pull but the balance does not; neither side may move.
	err := store.TransferFrom(context.Background(), "spender-1", "owner-1", "sink-1", 200, now)
	if !errors.Is(err, domainerrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	balance, _ := store.BalanceOf(context.Background(), "owner-1")
	if balance != 100 {
		t.Fatalf("balance must be untouched, got %d", balance)
	}
	remaining, _ := store.Allowance(context.Background(), "owner-1", "spender-1")
	if remaining != 1000 {
		t.Fatalf("allowance must be untouched, got %d", remaining)
	}
}

func TestApproveOverwritesAllowance(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	if err := store.Approve(context.Background(), "owner-1", "spender-1", 500, now); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := store.Approve(context.Background(), "owner-1", "spender-1", 70, now); err != nil {
		t.Fatalf("re-approve failed: %v", err)
	}
	remaining, _ := store.Allowance(context.Background(), "owner-1", "spender-1")
	if remaining != 70 {
		t.Fatalf("approve replaces the allowance, got %d", remaining)
	}
}

func TestListAccounts(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	if _, err := store.Mint(context.Background(), "a", 1, now); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := store.Mint(context.Background(), "b", 2, now); err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	accounts, err := store.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("list accounts failed: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
}
