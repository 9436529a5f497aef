package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"nexusbet/models"
)

// Ledger is the append-only transaction log. Entries are immutable once
// written; the single exception is the status transition of a Pending
// withdrawal entry.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Append writes one entry inside the caller's transaction. Entry ids are
// unique; a reused id fails with ErrDuplicateEntry.
func (l *Ledger) Append(tx *gorm.DB, entry *models.Transaction) error {
	if entry.TxID == "" {
		entry.TxID = uuid.New().String()
	}
	if entry.Status == "" {
		entry.Status = models.TxStatusApproved
	}

	var count int64
	if err := tx.Model(&models.Transaction{}).Where("tx_id = ?", entry.TxID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateEntry
	}

	return tx.Create(entry).Error
}

// UpdateStatus moves a Pending withdrawal entry to its terminal status.
// Any other entry, or a second transition, fails with ErrAlreadyResolved.
func (l *Ledger) UpdateStatus(tx *gorm.DB, txID, newStatus string) error {
	res := tx.Model(&models.Transaction{}).
		Where("tx_id = ? AND type = ? AND status = ?", txID, models.TxWithdrawal, models.TxStatusPending).
		Update("status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}

func (l *Ledger) ListForUser(username string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var entries []models.Transaction
	err := l.db.Where("username = ?", username).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (l *Ledger) ListGlobal(limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.Transaction
	err := l.db.Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

// UserDelta reconstructs a user's balance movement from the ledger: credits
// minus debits over all entries. A Rejected withdrawal nets zero — the money
// left the balance at request time and came back on rejection, and the entry's
// terminal status is the audit record of both.
func (l *Ledger) UserDelta(username string) (int64, error) {
	var entries []models.Transaction
	if err := l.db.Where("username = ?", username).Find(&entries).Error; err != nil {
		return 0, err
	}

	var delta int64
	for i := range entries {
		e := &entries[i]
		if e.Type == models.TxWithdrawal && e.Status == models.TxStatusRejected {
			continue
		}
		delta += e.Signed()
	}
	return delta, nil
}
