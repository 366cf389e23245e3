package ports

import (
	"context"
	"time"

	"agora/contexts/governance/dao-engine/domain/entities"
	contractsv1 "agora/contracts/gen/events/v1"
)

type MemberRepository interface {
	SaveMember(ctx context.Context, member entities.Member) error
	GetMember(ctx context.Context, address string) (entities.Member, bool, error)
	ListMembers(ctx context.Context) ([]entities.Member, error)
	// CreditShares creates the member row if missing and atomically adds
	// amount to both the member balance and the total share supply.
	CreditShares(ctx context.Context, address string, amount uint64, at time.Time) (entities.Member, error)
	TotalShares(ctx context.Context) (uint64, error)
}

type ProposalRepository interface {
	// CreateProposal fails with ErrDuplicateProposal when the id exists.
	CreateProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error)
	ListProposals(ctx context.Context) ([]entities.Proposal, error)
	GetBallot(ctx context.Context, proposalID uint64, voter string) (entities.Ballot, bool, error)
	ListBallots(ctx context.Context, proposalID uint64) ([]entities.Ballot, error)
	// RecordBallot appends the ballot and folds its weight into the proposal
	// tally in one atomic step, so concurrent ballots never lose weight. A
	// duplicate voter surfaces ErrAlreadyVoted.
	RecordBallot(ctx context.Context, ballot entities.Ballot) error
}

// AssetLedger is the external fungible-asset collaborator. The engine calls
// it exactly once per share purchase to pull funds into treasury custody.
type AssetLedger interface {
	TransferFrom(ctx context.Context, from string, to string, amount uint64) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
