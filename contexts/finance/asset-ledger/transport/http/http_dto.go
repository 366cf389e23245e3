package http

// ErrorResponse is the error payload returned by asset-ledger endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MintRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type ApproveRequest struct {
	Spender string `json:"spender"`
	Amount  uint64 `json:"amount"`
}

type AccountResponse struct {
	Address   string `json:"address"`
	Balance   uint64 `json:"balance"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type AllowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Remaining uint64 `json:"remaining"`
}

type TransferResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}
