package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddMemberRequest struct {
	Address string `json:"address"`
}

type MemberResponse struct {
	Address      string `json:"address"`
	IsMember     bool   `json:"is_member"`
	IsAdmin      bool   `json:"is_admin"`
	ShareBalance uint64 `json:"share_balance"`
}

type MemberListResponse struct {
	Items []MemberResponse `json:"items"`
}

type MembershipCheckResponse struct {
	Address         string `json:"address"`
	IsMemberOrAdmin bool   `json:"is_member_or_admin"`
}

type BuySharesRequest struct {
	Amount uint64 `json:"amount"`
}

type BuySharesResponse struct {
	Address      string `json:"address"`
	AmountSpent  uint64 `json:"amount_spent"`
	Purchased    uint64 `json:"purchased"`
	ShareBalance uint64 `json:"share_balance"`
}

type AddSharesRequest struct {
	Amount uint64 `json:"amount"`
}

type GiveSharesRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type SharesResponse struct {
	Address string `json:"address"`
	Shares  uint64 `json:"shares"`
}

type AddProposalRequest struct {
	ProposalID  uint64 `json:"proposal_id"`
	Description string `json:"description"`
}

type ProposalResponse struct {
	ProposalID  uint64 `json:"proposal_id"`
	Description string `json:"description"`
	Proposer    string `json:"proposer"`
	YesWeight   uint64 `json:"yes_weight"`
	NoWeight    uint64 `json:"no_weight"`
	YesVoters   int    `json:"yes_voters"`
	NoVoters    int    `json:"no_voters"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type VoteRequest struct {
	Support bool `json:"support"`
}

type BallotResponse struct {
	BallotID   string `json:"ballot_id"`
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	Support    bool   `json:"support"`
	Weight     uint64 `json:"weight"`
}

type BallotListResponse struct {
	Items []BallotResponse `json:"items"`
}

type ResultResponse struct {
	ProposalID  uint64 `json:"proposal_id"`
	TotalVoters int    `json:"total_voters"`
	YesVoters   int    `json:"yes_voters"`
	NoVoters    int    `json:"no_voters"`
	TotalWeight uint64 `json:"total_weight"`
	YesWeight   uint64 `json:"yes_weight"`
	NoWeight    uint64 `json:"no_weight"`
}

type ApprovalResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Approved   bool   `json:"approved"`
}

type EngineInfoResponse struct {
	AdminAddress    string `json:"admin_address"`
	TreasuryAddress string `json:"treasury_address"`
	GovernanceType  uint   `json:"governance_type"`
	PurchaseRate    uint64 `json:"purchase_rate"`
	TotalShares     uint64 `json:"total_shares"`
}
