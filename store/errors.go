package store

import "errors"

// Recoverable, caller-facing failures. Controllers map these onto HTTP
// statuses; nothing here ever crashes the process.
var (
	ErrDuplicateIdentity  = errors.New("username already taken")
	ErrNotFound           = errors.New("account not found")
	ErrInvalidStake       = errors.New("stake must be positive")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrEmptySlip          = errors.New("bet slip is empty")
	ErrDuplicateSelection = errors.New("slip already carries a selection for this match")
	ErrAlreadyResolved    = errors.New("request already resolved")
	ErrDuplicateEntry     = errors.New("duplicate ledger entry")
	ErrKycRequired        = errors.New("kyc verification required")
	ErrAccountInUse       = errors.New("account has pending bets or withdrawals")
	ErrNothingToHarvest   = errors.New("no profit to harvest")
	ErrResultConflict     = errors.New("match already recorded with a different result")
)
