package models

import (
	"gorm.io/gorm"
)

const (
	WithdrawalPending  = "Pending"
	WithdrawalApproved = "Approved"
	WithdrawalRejected = "Rejected"
)

// WithdrawalRequest debits the balance optimistically at request time. A
// rejection refunds it; an approval is final. Each request resolves at most
// once.
type WithdrawalRequest struct {
	gorm.Model

	RequestID string `gorm:"size:36;uniqueIndex" json:"request_id"`
	Username  string `gorm:"index;size:32" json:"username"`
	Amount    int64  `json:"amount"`
	UpiID     string `gorm:"size:64" json:"upi_id"`
	Status    string `gorm:"size:16;index" json:"status"`

	// TxID points at the mirroring Withdrawal ledger entry.
	TxID string `gorm:"size:36" json:"tx_id"`
}
