package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/governance/dao-engine/domain/entities"
	domainerrors "agora/contexts/governance/dao-engine/domain/errors"
	"agora/contexts/governance/dao-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-process engine state. One writer lock serializes every
// mutating operation, keeping the conservation invariant observable at all
// times; read-only queries take the read lock.
type Store struct {
	mu sync.RWMutex

	members     map[string]entities.Member
	totalShares uint64
	proposals   map[uint64]entities.Proposal
	ballots     map[uint64]map[string]entities.Ballot
	outbox      map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		members:   make(map[string]entities.Member),
		proposals: make(map[uint64]entities.Proposal),
		ballots:   make(map[uint64]map[string]entities.Ballot),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) SaveMember(_ context.Context, member entities.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	address := strings.TrimSpace(member.Address)
	if existing, ok := s.members[address]; ok {
		// Share balances are owned by CreditShares; a flag update must not
		// clobber them.
		member.ShareBalance = existing.ShareBalance
		member.JoinedAt = existing.JoinedAt
	}
	member.Address = address
	s.members[address] = member
	return nil
}

func (s *Store) GetMember(_ context.Context, address string) (entities.Member, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[strings.TrimSpace(address)]
	if !ok {
		return entities.Member{}, false, nil
	}
	return member, true, nil
}

func (s *Store) ListMembers(_ context.Context) ([]entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Member, 0, len(s.members))
	for _, member := range s.members {
		items = append(items, member)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Address < items[j].Address
	})
	return items, nil
}

func (s *Store) CreditShares(
	_ context.Context,
	address string,
	amount uint64,
	at time.Time,
) (entities.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	address = strings.TrimSpace(address)
	member, ok := s.members[address]
	if !ok {
		member = entities.Member{
			Address:  address,
			JoinedAt: at.UTC(),
		}
	}
	member.ShareBalance += amount
	member.UpdatedAt = at.UTC()
	s.members[address] = member
	s.totalShares += amount
	return member, nil
}

func (s *Store) TotalShares(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalShares, nil
}

func (s *Store) CreateProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.proposals[proposal.ProposalID]; exists {
		return domainerrors.ErrDuplicateProposal
	}
	s.proposals[proposal.ProposalID] = proposal
	s.ballots[proposal.ProposalID] = make(map[string]entities.Ballot)
	return nil
}

func (s *Store) GetProposal(_ context.Context, proposalID uint64) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) ListProposals(_ context.Context) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		items = append(items, proposal)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ProposalID < items[j].ProposalID
	})
	return items, nil
}

func (s *Store) GetBallot(
	_ context.Context,
	proposalID uint64,
	voter string,
) (entities.Ballot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ballot, ok := s.ballots[proposalID][strings.TrimSpace(voter)]
	if !ok {
		return entities.Ballot{}, false, nil
	}
	return ballot, true, nil
}

func (s *Store) ListBallots(_ context.Context, proposalID uint64) ([]entities.Ballot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Ballot, 0, len(s.ballots[proposalID]))
	for _, ballot := range s.ballots[proposalID] {
		items = append(items, ballot)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CastAt.Equal(items[j].CastAt) {
			return items[i].Voter < items[j].Voter
		}
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) RecordBallot(_ context.Context, ballot entities.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, exists := s.proposals[ballot.ProposalID]
	if !exists {
		return domainerrors.ErrProposalNotFound
	}
	voter := strings.TrimSpace(ballot.Voter)
	byVoter := s.ballots[ballot.ProposalID]
	if byVoter == nil {
		byVoter = make(map[string]entities.Ballot)
		s.ballots[ballot.ProposalID] = byVoter
	}
	if _, voted := byVoter[voter]; voted {
		return domainerrors.ErrAlreadyVoted
	}
	byVoter[voter] = ballot

	// The tally moves with the ballot under the same lock so no cast weight
	// can be lost to an interleaved writer.
	if ballot.Support {
		proposal.YesWeight += ballot.Weight
		proposal.YesVoters++
	} else {
		proposal.NoWeight += ballot.Weight
		proposal.NoVoters++
	}
	proposal.UpdatedAt = ballot.CastAt.UTC()
	s.proposals[ballot.ProposalID] = proposal
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrInvalidInput
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrInvalidInput
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.MemberRepository = (*Store)(nil)
var _ ports.ProposalRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
