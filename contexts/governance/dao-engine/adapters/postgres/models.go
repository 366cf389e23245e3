package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"agora/contexts/governance/dao-engine/domain/entities"
	"agora/contexts/governance/dao-engine/ports"
)

type memberModel struct {
	Address      string    `gorm:"column:address;primaryKey"`
	IsMember     bool      `gorm:"column:is_member"`
	IsAdmin      bool      `gorm:"column:is_admin"`
	ShareBalance uint64    `gorm:"column:share_balance"`
	JoinedAt     time.Time `gorm:"column:joined_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (memberModel) TableName() string {
	return "members"
}

func memberModelFromEntity(member entities.Member) memberModel {
	row := memberModel{
		Address:      strings.TrimSpace(member.Address),
		IsMember:     member.IsMember,
		IsAdmin:      member.IsAdmin,
		ShareBalance: member.ShareBalance,
		JoinedAt:     member.JoinedAt.UTC(),
		UpdatedAt:    member.UpdatedAt.UTC(),
	}
	if row.JoinedAt.IsZero() {
		row.JoinedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.JoinedAt
	}
	return row
}

func (m memberModel) toEntity() entities.Member {
	return entities.Member{
		Address:      m.Address,
		IsMember:     m.IsMember,
		IsAdmin:      m.IsAdmin,
		ShareBalance: m.ShareBalance,
		JoinedAt:     m.JoinedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type supplyModel struct {
	ID          int    `gorm:"column:id;primaryKey"`
	TotalShares uint64 `gorm:"column:total_shares"`
}

func (supplyModel) TableName() string {
	return "governance_supply"
}

type proposalModel struct {
	ID          uint64    `gorm:"column:id;primaryKey"`
	Description string    `gorm:"column:description"`
	Proposer    string    `gorm:"column:proposer"`
	YesWeight   uint64    `gorm:"column:yes_weight"`
	NoWeight    uint64    `gorm:"column:no_weight"`
	YesVoters   int       `gorm:"column:yes_voters"`
	NoVoters    int       `gorm:"column:no_voters"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	row := proposalModel{
		ID:          proposal.ProposalID,
		Description: strings.TrimSpace(proposal.Description),
		Proposer:    strings.TrimSpace(proposal.Proposer),
		YesWeight:   proposal.YesWeight,
		NoWeight:    proposal.NoWeight,
		YesVoters:   proposal.YesVoters,
		NoVoters:    proposal.NoVoters,
		CreatedAt:   proposal.CreatedAt.UTC(),
		UpdatedAt:   proposal.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ProposalID:  m.ID,
		Description: m.Description,
		Proposer:    m.Proposer,
		YesWeight:   m.YesWeight,
		NoWeight:    m.NoWeight,
		YesVoters:   m.YesVoters,
		NoVoters:    m.NoVoters,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type ballotModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ProposalID uint64    `gorm:"column:proposal_id;uniqueIndex:idx_ballots_identity"`
	Voter      string    `gorm:"column:voter;uniqueIndex:idx_ballots_identity"`
	Support    bool      `gorm:"column:support"`
	Weight     uint64    `gorm:"column:weight"`
	CastAt     time.Time `gorm:"column:cast_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	row := ballotModel{
		ID:         strings.TrimSpace(ballot.BallotID),
		ProposalID: ballot.ProposalID,
		Voter:      strings.TrimSpace(ballot.Voter),
		Support:    ballot.Support,
		Weight:     ballot.Weight,
		CastAt:     ballot.CastAt.UTC(),
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	return row
}

func (m ballotModel) toEntity() entities.Ballot {
	return entities.Ballot{
		BallotID:   m.ID,
		ProposalID: m.ProposalID,
		Voter:      m.Voter,
		Support:    m.Support,
		Weight:     m.Weight,
		CastAt:     m.CastAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}
