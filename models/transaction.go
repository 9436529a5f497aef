package models

import (
	"gorm.io/gorm"
)

const (
	TxDeposit      = "Deposit"
	TxWithdrawal   = "Withdrawal"
	TxBetPlacement = "Bet_Placement"
	TxBetWinnings  = "Bet_Winnings"
	TxBonus        = "Bonus"
	TxAdjustment   = "Adjustment"
)

const (
	TxStatusPending  = "Pending"
	TxStatusApproved = "Approved"
	TxStatusRejected = "Rejected"
)

const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Transaction is one immutable ledger entry. The only permitted mutation is
// the status transition of a Pending withdrawal entry.
type Transaction struct {
	gorm.Model

	TxID     string `gorm:"size:36;uniqueIndex" json:"tx_id"`
	Username string `gorm:"index;size:32" json:"username"`
	Type     string `gorm:"size:16;index" json:"type"`

	// Amount is a positive magnitude in paise; Direction carries the sign.
	Amount    int64  `json:"amount"`
	Direction string `gorm:"size:8" json:"direction"`

	Status  string `gorm:"size:16" json:"status"`
	Method  string `gorm:"size:32" json:"method,omitempty"`
	Details string `gorm:"size:255" json:"details,omitempty"`
	RefID   string `gorm:"size:64;index" json:"ref_id,omitempty"`

	BalanceBefore int64 `json:"balance_before"`
	BalanceAfter  int64 `json:"balance_after"`
}

// Signed returns the entry amount with the sign the ledger sums by.
func (t *Transaction) Signed() int64 {
	if t.Direction == DirectionDebit {
		return -t.Amount
	}
	return t.Amount
}
