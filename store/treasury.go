package store

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nexusbet/database"
	"nexusbet/models"
)

// Treasury maintains the singleton house counters incrementally so reads are
// O(1). It is the system's hottest shared row; every mutation is an atomic
// SQL increment inside the caller's transaction.
type Treasury struct {
	db       *gorm.DB
	accounts *AccountStore
	log      *logrus.Logger
}

func NewTreasury(db *gorm.DB, accounts *AccountStore, log *logrus.Logger) *Treasury {
	return &Treasury{db: db, accounts: accounts, log: log}
}

// Seed creates the snapshot row on first start.
func (t *Treasury) Seed() error {
	stats := models.HouseStats{ID: 1, TotalTreasury: models.InitialTreasury}
	return t.db.Where(models.HouseStats{ID: 1}).FirstOrCreate(&stats).Error
}

// OnStakePlaced books a stake: the house provisionally keeps it as profit
// until the bet wins.
func (t *Treasury) OnStakePlaced(tx *gorm.DB, stake int64) error {
	return tx.Model(&models.HouseStats{}).Where("id = ?", 1).Updates(map[string]any{
		"total_treasury": gorm.Expr("total_treasury + ?", stake),
		"total_volume":   gorm.Expr("total_volume + ?", stake),
		"total_profit":   gorm.Expr("total_profit + ?", stake),
	}).Error
}

// OnBetWon reverses the provisional profit and pays the excess over stake.
func (t *Treasury) OnBetWon(tx *gorm.DB, payout, stake int64) error {
	err := tx.Model(&models.HouseStats{}).Where("id = ?", 1).Updates(map[string]any{
		"total_treasury": gorm.Expr("total_treasury - ?", payout),
		"total_profit":   gorm.Expr("total_profit - ?", payout-stake),
	}).Error
	if err != nil {
		return err
	}
	t.assertFunded(tx)
	return nil
}

func (t *Treasury) Snapshot() (*models.HouseStats, error) {
	var stats models.HouseStats
	if err := t.db.First(&stats, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// Harvest sweeps profit out of the treasury into the acting admin's balance,
// logged as a Bonus entry. Profit floors at zero; the treasury seed is a
// fixed float, so draining below zero is flagged, not fatal.
func (t *Treasury) Harvest(adminUsername string, amount int64) (*models.HouseStats, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	err := t.db.Transaction(func(tx *gorm.DB) error {
		var stats models.HouseStats
		if err := database.Lock(tx).First(&stats, 1).Error; err != nil {
			return err
		}
		if stats.TotalProfit <= 0 {
			return ErrNothingToHarvest
		}

		newProfit := stats.TotalProfit - amount
		if newProfit < 0 {
			newProfit = 0
		}
		if err := tx.Model(&models.HouseStats{}).Where("id = ?", 1).Updates(map[string]any{
			"total_treasury": gorm.Expr("total_treasury - ?", amount),
			"total_profit":   newProfit,
		}).Error; err != nil {
			return err
		}

		entry := &models.Transaction{
			Type:    models.TxBonus,
			Details: "treasury harvest",
		}
		if err := t.accounts.Credit(tx, adminUsername, amount, entry); err != nil {
			return err
		}

		t.assertFunded(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.Snapshot()
}

func (t *Treasury) assertFunded(tx *gorm.DB) {
	var stats models.HouseStats
	if err := tx.First(&stats, 1).Error; err != nil {
		return
	}
	if stats.TotalTreasury < 0 {
		t.log.WithField("total_treasury", stats.TotalTreasury).
			Warn("treasury reserve is negative")
	}
}
