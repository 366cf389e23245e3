package entities

import "time"

// Proposal is immutable once created except for its tally fields, which only
// grow as ballots arrive. Proposal ids are caller-supplied and unique.
type Proposal struct {
	ProposalID  uint64
	Description string
	Proposer    string
	YesWeight   uint64
	NoWeight    uint64
	YesVoters   int
	NoVoters    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Approved is the approval verdict: strict weighted majority. A tie is not
// approved.
func (p Proposal) Approved() bool {
	return p.YesWeight > p.NoWeight
}

// Ballot is the audit record of one cast vote. Weight is the voter's share
// balance at cast time and never changes afterwards.
type Ballot struct {
	BallotID   string
	ProposalID uint64
	Voter      string
	Support    bool
	Weight     uint64
	CastAt     time.Time
}

// Tally is the named-field result snapshot for a proposal.
type Tally struct {
	ProposalID  uint64
	TotalVoters int
	YesVoters   int
	NoVoters    int
	TotalWeight uint64
	YesWeight   uint64
	NoWeight    uint64
}

// TallyOf derives the running tally from the proposal's counters.
func TallyOf(p Proposal) Tally {
	return Tally{
		ProposalID:  p.ProposalID,
		TotalVoters: p.YesVoters + p.NoVoters,
		YesVoters:   p.YesVoters,
		NoVoters:    p.NoVoters,
		TotalWeight: p.YesWeight + p.NoWeight,
		YesWeight:   p.YesWeight,
		NoWeight:    p.NoWeight,
	}
}
