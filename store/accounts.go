package store

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"nexusbet/database"
	"nexusbet/models"
)

// AccountStore owns user records. Every balance-affecting call appends
// exactly one ledger entry in the same transaction; a balance can never move
// without its audit row.
type AccountStore struct {
	db     *gorm.DB
	ledger *Ledger
}

func NewAccountStore(db *gorm.DB, ledger *Ledger) *AccountStore {
	return &AccountStore{db: db, ledger: ledger}
}

func (s *AccountStore) Create(username, passwordHash, email string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	role := models.RoleStandard
	if username == "admin" {
		// The reserved username is promoted at registration.
		role = models.RoleAdmin
	}

	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		Balance:      0,
		Currency:     "INR",
		Role:         role,
		KycStatus:    models.KycUnverified,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.Where("username = ?", username).First(&existing).Error; err == nil {
			return ErrDuplicateIdentity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AccountStore) Get(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// applyBalance applies a signed delta inside the caller's transaction and
// appends the mirroring ledger entry. The conditional update keeps the
// balance >= 0 invariant even when two writers race on the same account.
func (s *AccountStore) applyBalance(tx *gorm.DB, username string, delta int64, entry *models.Transaction) error {
	var user models.User
	if err := database.Lock(tx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	res := tx.Model(&models.User{}).
		Where("username = ? AND balance + ? >= 0", username, delta).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}

	entry.Username = username
	if delta < 0 {
		entry.Amount = -delta
		entry.Direction = models.DirectionDebit
	} else {
		entry.Amount = delta
		entry.Direction = models.DirectionCredit
	}
	entry.BalanceBefore = user.Balance
	entry.BalanceAfter = user.Balance + delta

	return s.ledger.Append(tx, entry)
}

// Credit adds funds inside the caller's transaction.
func (s *AccountStore) Credit(tx *gorm.DB, username string, amount int64, entry *models.Transaction) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.applyBalance(tx, username, amount, entry)
}

// Debit removes funds inside the caller's transaction, failing with
// ErrInsufficientFunds before the balance could go negative.
func (s *AccountStore) Debit(tx *gorm.DB, username string, amount int64, entry *models.Transaction) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.applyBalance(tx, username, -amount, entry)
}

// Deposit credits the balance immediately and logs a Deposit entry. Real
// payment capture stays outside this service.
func (s *AccountStore) Deposit(username string, amount int64, method string) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.Transaction{
			Type:   models.TxDeposit,
			Method: method,
		}
		return s.Credit(tx, username, amount, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(username)
}

// AdjustBalance applies a signed admin delta with a mandatory reason. A
// negative delta that would overdraw the account is rejected.
func (s *AccountStore) AdjustBalance(username string, delta int64, reason string) (*models.User, error) {
	if delta == 0 {
		return s.Get(username)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.Transaction{
			Type:    models.TxAdjustment,
			Details: reason,
		}
		return s.applyBalance(tx, username, delta, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(username)
}

// SetBalance overrides the balance to an absolute value and logs the delta as
// an Adjustment entry.
func (s *AccountStore) SetBalance(username string, target int64, reason string) (*models.User, error) {
	if target < 0 {
		return nil, ErrInvalidAmount
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := database.Lock(tx).Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		delta := target - user.Balance
		if delta == 0 {
			return nil
		}
		entry := &models.Transaction{
			Type:    models.TxAdjustment,
			Details: reason,
		}
		return s.applyBalance(tx, username, delta, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(username)
}

// SetBanStatus is idempotent. Banning revokes every live session so the
// account drops out immediately. The caller enforces the self-ban rule.
func (s *AccountStore) SetBanStatus(username string, banned bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.lockUser(tx, username)
		if err != nil {
			return err
		}
		if err := tx.Model(user).Update("is_banned", banned).Error; err != nil {
			return err
		}
		if banned {
			return tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error
		}
		return nil
	})
}

func (s *AccountStore) SetRole(username, role string) error {
	if role != models.RoleStandard && role != models.RoleAdmin {
		return ErrInvalidArgument
	}
	res := s.db.Model(&models.User{}).Where("username = ?", username).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountStore) SetKycStatus(username, status string) error {
	switch status {
	case models.KycUnverified, models.KycPending, models.KycVerified, models.KycRejected:
	default:
		return ErrInvalidArgument
	}
	res := s.db.Model(&models.User{}).Where("username = ?", username).Update("kyc_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetNotifications replaces the account's notification preferences.
func (s *AccountStore) SetNotifications(username string, prefs models.NotificationPrefs) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	res := s.db.Model(&models.User{}).Where("username = ?", username).
		Update("notifications", raw)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitKyc stores the user's identity details and moves the status to
// Pending for admin review.
func (s *AccountStore) SubmitKyc(username string, details models.KycDetails) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	res := s.db.Model(&models.User{}).Where("username = ?", username).Updates(map[string]any{
		"kyc_details": raw,
		"kyc_status":  models.KycPending,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AccountStore) List() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// Purge hard-deletes an account for admin tooling. It refuses while the
// account still has open bets or withdrawals; ledger rows are kept either way
// so the audit trail outlives the account.
func (s *AccountStore) Purge(username string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.lockUser(tx, username)
		if err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.BetRecord{}).
			Where("username = ? AND status = ?", username, models.BetPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrAccountInUse
		}
		if err := tx.Model(&models.WithdrawalRequest{}).
			Where("username = ? AND status = ?", username, models.WithdrawalPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrAccountInUse
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		var bets []models.BetRecord
		if err := tx.Where("username = ?", username).Find(&bets).Error; err != nil {
			return err
		}
		for i := range bets {
			if err := tx.Where("bet_record_id = ?", bets[i].ID).Delete(&models.BetSelection{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("username = ?", username).Delete(&models.BetRecord{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(user).Error
	})
}

func (s *AccountStore) lockUser(tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := database.Lock(tx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
