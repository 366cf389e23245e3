package errors

import "errors"

var (
	ErrInvalidInput          = errors.New("asset ledger input is invalid")
	ErrInsufficientFunds     = errors.New("insufficient asset balance")
	ErrInsufficientAllowance = errors.New("insufficient spend allowance")
)
