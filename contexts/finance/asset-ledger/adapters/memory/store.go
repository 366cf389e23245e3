package memory

import (
	"context"
	"sync"
	"time"

	"agora/contexts/finance/asset-ledger/domain/entities"
	domainerrors "agora/contexts/finance/asset-ledger/domain/errors"
	"agora/contexts/finance/asset-ledger/ports"
)

// Store is an in-memory ledger used by local development and tests.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]entities.Account
	allowances map[string]map[string]entities.Allowance
}

func NewStore() *Store {
	return &Store{
		accounts:   make(map[string]entities.Account),
		allowances: make(map[string]map[string]entities.Allowance),
	}
}

func (s *Store) BalanceOf(_ context.Context, address string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.accounts[address].Balance, nil
}

func (s *Store) Allowance(_ context.Context, owner string, spender string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.allowances[owner][spender].Remaining, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]entities.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]entities.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *Store) Mint(_ context.Context, to string, amount uint64, at time.Time) (entities.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.accounts[to]
	account.Address = to
	account.Balance += amount
	account.UpdatedAt = at
	s.accounts[to] = account
	return account, nil
}

func (s *Store) Transfer(_ context.Context, from string, to string, amount uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.moveLocked(from, to, amount, at)
}

func (s *Store) Approve(_ context.Context, owner string, spender string, amount uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spenders, ok := s.allowances[owner]
	if !ok {
		spenders = make(map[string]entities.Allowance)
		s.allowances[owner] = spenders
	}
	spenders[spender] = entities.Allowance{
		Owner:     owner,
		Spender:   spender,
		Remaining: amount,
		UpdatedAt: at,
	}
	return nil
}

func (s *Store) TransferFrom(_ context.Context, spender string, from string, to string, amount uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowance := s.allowances[from][spender]
	if allowance.Remaining < amount {
		return domainerrors.ErrInsufficientAllowance
	}
	if err := s.moveLocked(from, to, amount, at); err != nil {
		return err
	}
	allowance.Owner = from
	allowance.Spender = spender
	allowance.Remaining -= amount
	allowance.UpdatedAt = at
	s.allowances[from][spender] = allowance
	return nil
}

// moveLocked requires the write lock and leaves both accounts untouched on
// insufficient funds.
func (s *Store) moveLocked(from string, to string, amount uint64, at time.Time) error {
	source := s.accounts[from]
	if source.Balance < amount {
		return domainerrors.ErrInsufficientFunds
	}
	source.Address = from
	source.Balance -= amount
	source.UpdatedAt = at

	destination := s.accounts[to]
	destination.Address = to
	destination.Balance += amount
	destination.UpdatedAt = at

	s.accounts[from] = source
	s.accounts[to] = destination
	return nil
}

var _ ports.LedgerRepository = (*Store)(nil)
