package entities

import "time"

// Account holds an address balance in asset base units.
type Account struct {
	Address   string
	Balance   uint64
	UpdatedAt time.Time
}

// Allowance is the amount a spender may pull from an owner's balance.
type Allowance struct {
	Owner     string
	Spender   string
	Remaining uint64
	UpdatedAt time.Time
}
