package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"nexusbet/database"
	"nexusbet/models"
)

// WithdrawalQueue holds payout requests. The amount is debited optimistically
// at request time; a rejection refunds it, an approval is final. Each request
// resolves exactly once.
type WithdrawalQueue struct {
	db       *gorm.DB
	ledger   *Ledger
	accounts *AccountStore
}

func NewWithdrawalQueue(db *gorm.DB, ledger *Ledger, accounts *AccountStore) *WithdrawalQueue {
	return &WithdrawalQueue{db: db, ledger: ledger, accounts: accounts}
}

// Request debits the balance and files a Pending request. Withdrawals are
// gated on verified KYC, as the cashier flow always was.
func (q *WithdrawalQueue) Request(username string, amount int64, upiID string) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	user, err := q.accounts.Get(username)
	if err != nil {
		return nil, err
	}
	if user.KycStatus != models.KycVerified {
		return nil, ErrKycRequired
	}

	req := models.WithdrawalRequest{
		RequestID: uuid.New().String(),
		Username:  username,
		Amount:    amount,
		UpiID:     upiID,
		Status:    models.WithdrawalPending,
		TxID:      uuid.New().String(),
	}

	err = q.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.Transaction{
			TxID:    req.TxID,
			Type:    models.TxWithdrawal,
			Status:  models.TxStatusPending,
			Method:  "UPI",
			Details: upiID,
			RefID:   req.RequestID,
		}
		if err := q.accounts.Debit(tx, username, amount, entry); err != nil {
			return err
		}
		return tx.Create(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Resolve moves a Pending request to Approved or Rejected. Rejection credits
// the amount back; the ledger entry's status flip is the audit record of the
// round trip, so no second entry is written. A second resolve fails with
// ErrAlreadyResolved.
func (q *WithdrawalQueue) Resolve(requestID string, approve bool) (*models.WithdrawalRequest, error) {
	newStatus := models.WithdrawalRejected
	if approve {
		newStatus = models.WithdrawalApproved
	}

	err := q.db.Transaction(func(tx *gorm.DB) error {
		var req models.WithdrawalRequest
		if err := database.Lock(tx).Where("request_id = ?", requestID).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		res := tx.Model(&models.WithdrawalRequest{}).
			Where("request_id = ? AND status = ?", requestID, models.WithdrawalPending).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyResolved
		}

		if err := q.ledger.UpdateStatus(tx, req.TxID, newStatus); err != nil {
			return err
		}

		if !approve {
			return tx.Model(&models.User{}).
				Where("username = ?", req.Username).
				Update("balance", gorm.Expr("balance + ?", req.Amount)).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var req models.WithdrawalRequest
	if err := q.db.Where("request_id = ?", requestID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (q *WithdrawalQueue) Get(requestID string) (*models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	if err := q.db.Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (q *WithdrawalQueue) ListForUser(username string) ([]models.WithdrawalRequest, error) {
	var reqs []models.WithdrawalRequest
	err := q.db.Where("username = ?", username).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (q *WithdrawalQueue) ListPending() ([]models.WithdrawalRequest, error) {
	var reqs []models.WithdrawalRequest
	err := q.db.Where("status = ?", models.WithdrawalPending).Order("created_at ASC").Find(&reqs).Error
	return reqs, err
}
