package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"nexusbet/database"
	"nexusbet/models"
)

// Selection is the placement-time input for one accumulator leg.
type Selection struct {
	MatchID   string  `json:"match_id"`
	MatchName string  `json:"match_name"`
	Pick      string  `json:"pick"`
	TeamName  string  `json:"team_name"`
	Odds      float64 `json:"odds"`
}

// BetStore owns bet slips: placement, per-leg resolution and terminal
// settlement. Slip status flips are compare-and-swap on Pending, so a bet
// pays out at most once no matter how many settlement triggers race.
type BetStore struct {
	db       *gorm.DB
	ledger   *Ledger
	accounts *AccountStore
	treasury *Treasury
}

func NewBetStore(db *gorm.DB, ledger *Ledger, accounts *AccountStore, treasury *Treasury) *BetStore {
	return &BetStore{db: db, ledger: ledger, accounts: accounts, treasury: treasury}
}

// Place validates the slip, debits the stake, credits the treasury and stores
// the Pending record — all in one transaction. Odds are snapshotted here;
// later market movement never touches a placed slip.
func (s *BetStore) Place(username string, selections []Selection, stake int64) (*models.BetRecord, error) {
	if len(selections) == 0 {
		return nil, ErrEmptySlip
	}
	if stake <= 0 {
		return nil, ErrInvalidStake
	}

	seen := make(map[string]bool, len(selections))
	totalOdds := decimal.NewFromInt(1)
	legs := make([]models.BetSelection, 0, len(selections))
	for _, sel := range selections {
		if sel.MatchID == "" || sel.Odds < 1.01 {
			return nil, ErrInvalidStake
		}
		switch sel.Pick {
		case models.PickHome, models.PickDraw, models.PickAway:
		default:
			return nil, ErrInvalidStake
		}
		if seen[sel.MatchID] {
			return nil, ErrDuplicateSelection
		}
		seen[sel.MatchID] = true

		totalOdds = totalOdds.Mul(decimal.NewFromFloat(sel.Odds))
		legs = append(legs, models.BetSelection{
			MatchID:   sel.MatchID,
			MatchName: sel.MatchName,
			Pick:      sel.Pick,
			TeamName:  sel.TeamName,
			Odds:      sel.Odds,
		})
	}

	payout := decimal.NewFromInt(stake).Mul(totalOdds).Round(0).IntPart()
	oddsValue, _ := totalOdds.Round(4).Float64()

	bet := models.BetRecord{
		BetID:           uuid.New().String(),
		Username:        username,
		Stake:           stake,
		TotalOdds:       oddsValue,
		PotentialPayout: payout,
		Status:          models.BetPending,
		Selections:      legs,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry := &models.Transaction{
			Type:    models.TxBetPlacement,
			RefID:   bet.BetID,
			Details: fmt.Sprintf("%d selection slip @ %.4f", len(legs), oddsValue),
		}
		if err := s.accounts.Debit(tx, username, stake, entry); err != nil {
			return err
		}
		if err := s.treasury.OnStakePlaced(tx, stake); err != nil {
			return err
		}
		return tx.Create(&bet).Error
	})
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (s *BetStore) Get(betID string) (*models.BetRecord, error) {
	var bet models.BetRecord
	err := s.db.Preload("Selections").Where("bet_id = ?", betID).First(&bet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bet, nil
}

func (s *BetStore) ListForUser(username string) ([]models.BetRecord, error) {
	var bets []models.BetRecord
	err := s.db.Preload("Selections").
		Where("username = ?", username).
		Order("created_at DESC").
		Find(&bets).Error
	return bets, err
}

// ListPending lists every open slip across all accounts, oldest first.
func (s *BetStore) ListPending() ([]models.BetRecord, error) {
	var bets []models.BetRecord
	err := s.db.Preload("Selections").
		Where("status = ?", models.BetPending).
		Order("created_at ASC").
		Find(&bets).Error
	return bets, err
}

// PendingForMatch lists every Pending slip, across all accounts, carrying a
// leg on the given match. This is the settlement sweep's working set.
func (s *BetStore) PendingForMatch(matchID string) ([]models.BetRecord, error) {
	var ids []uint
	err := s.db.Model(&models.BetSelection{}).
		Distinct("bet_record_id").
		Where("match_id = ?", matchID).
		Pluck("bet_record_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var bets []models.BetRecord
	err = s.db.Preload("Selections").
		Where("id IN ? AND status = ?", ids, models.BetPending).
		Order("username ASC, created_at ASC").
		Find(&bets).Error
	return bets, err
}

// MarkLeg records a leg outcome exactly once; a second mark is a no-op.
func (s *BetStore) MarkLeg(tx *gorm.DB, selectionID uint, result string) (bool, error) {
	res := tx.Model(&models.BetSelection{}).
		Where("id = ? AND result = ?", selectionID, models.LegUnresolved).
		Update("result", result)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SettleWon flips the slip to Won and moves the money. The CAS on Pending
// makes re-delivery of the same outcome a no-op.
func (s *BetStore) SettleWon(tx *gorm.DB, bet *models.BetRecord) (bool, error) {
	now := time.Now()
	res := tx.Model(&models.BetRecord{}).
		Where("id = ? AND status = ?", bet.ID, models.BetPending).
		Updates(map[string]any{
			"status":     models.BetWon,
			"winnings":   bet.PotentialPayout,
			"settled_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	entry := &models.Transaction{
		Type:  models.TxBetWinnings,
		RefID: bet.BetID,
	}
	if err := s.accounts.Credit(tx, bet.Username, bet.PotentialPayout, entry); err != nil {
		return false, err
	}
	if err := s.treasury.OnBetWon(tx, bet.PotentialPayout, bet.Stake); err != nil {
		return false, err
	}
	return true, nil
}

// SettleLost flips the slip to Lost. No money moves on a loss.
func (s *BetStore) SettleLost(tx *gorm.DB, bet *models.BetRecord) (bool, error) {
	now := time.Now()
	res := tx.Model(&models.BetRecord{}).
		Where("id = ? AND status = ?", bet.ID, models.BetPending).
		Updates(map[string]any{
			"status":     models.BetLost,
			"winnings":   0,
			"settled_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ForceSettle is the manual/admin path. Settling an already-terminal slip is
// a no-op, not an error.
func (s *BetStore) ForceSettle(betID string, won bool) (*models.BetRecord, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var bet models.BetRecord
		if err := database.Lock(tx).Where("bet_id = ?", betID).First(&bet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if bet.Status != models.BetPending {
			return nil
		}
		if won {
			_, err := s.SettleWon(tx, &bet)
			return err
		}
		_, err := s.SettleLost(tx, &bet)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.Get(betID)
}
