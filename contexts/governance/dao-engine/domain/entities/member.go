package entities

import "time"

// Member is an address known to the engine. Membership and share holding are
// independent gates: a registered member may hold zero shares, and the
// administrator may hold shares without being registered as a member.
type Member struct {
	Address      string
	IsMember     bool
	IsAdmin      bool
	ShareBalance uint64
	JoinedAt     time.Time
	UpdatedAt    time.Time
}

// CanVote is the sole voting-eligibility gate.
func (m Member) CanVote() bool {
	return m.ShareBalance > 0
}
