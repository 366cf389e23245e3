package errors

import "errors"

var (
	ErrUnauthorized      = errors.New("caller is not authorized for this operation")
	ErrNoShares          = errors.New("you have no shares to vote with")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrDuplicateProposal = errors.New("proposal id already exists")
	ErrInvalidAmount     = errors.New("amount converts to zero shares")
	ErrAlreadyVoted      = errors.New("caller already voted on this proposal")
	ErrInvalidInput      = errors.New("governance input is invalid")
)
