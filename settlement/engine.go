package settlement

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"nexusbet/database"
	"nexusbet/models"
	"nexusbet/monitoring"
	"nexusbet/store"
)

// Engine resolves bets when a match reaches its terminal result. It settles
// per leg: a slip is marked Lost the moment any leg resolves against it, and
// Won only once every leg has resolved in its favor. All status flips ride on
// the bet store's compare-and-swap guards, so re-delivering a Finished event
// can never pay twice.
type Engine struct {
	db   *gorm.DB
	bets *store.BetStore
	log  *logrus.Logger
}

func NewEngine(db *gorm.DB, bets *store.BetStore, log *logrus.Logger) *Engine {
	return &Engine{db: db, bets: bets, log: log}
}

// HandleMatchFinished records the result and sweeps every pending slip that
// carries a leg on the match. A failure on one account is logged and skipped;
// it never blocks the other accounts' settlement.
func (e *Engine) HandleMatchFinished(result *models.MatchResult) error {
	result.Category = models.ResultCategory(result.HomeScore, result.AwayScore)

	if err := e.recordResult(result); err != nil {
		return err
	}

	bets, err := e.bets.PendingForMatch(result.MatchID)
	if err != nil {
		return err
	}

	for i := range bets {
		bet := &bets[i]
		if err := e.settleOne(bet, result); err != nil {
			monitoring.SweepFailures.Inc()
			e.log.WithFields(logrus.Fields{
				"bet_id":   bet.BetID,
				"username": bet.Username,
				"match_id": result.MatchID,
			}).WithError(err).Error("settlement failed, skipping bet")
		}
	}

	return nil
}

// recordResult persists the result exactly once. The unique MatchID index
// arbitrates concurrent deliveries: the insert either lands or collides with
// the recorded row. A collision with the same score is benign (the sweep
// re-runs under CAS guards); a different score is rejected outright.
func (e *Engine) recordResult(result *models.MatchResult) error {
	createErr := e.db.Create(result).Error
	if createErr == nil {
		return nil
	}

	var existing models.MatchResult
	if err := e.db.Where("match_id = ?", result.MatchID).First(&existing).Error; err != nil {
		return createErr
	}
	if existing.HomeScore != result.HomeScore || existing.AwayScore != result.AwayScore {
		return store.ErrResultConflict
	}
	return nil
}

// settleOne resolves a single slip's leg for this match inside one
// transaction: mark the leg, then flip the slip if the leg decided it.
func (e *Engine) settleOne(stale *models.BetRecord, result *models.MatchResult) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		var bet models.BetRecord
		if err := database.Lock(tx).Preload("Selections").
			Where("id = ?", stale.ID).First(&bet).Error; err != nil {
			return err
		}
		if bet.Status != models.BetPending {
			return nil
		}

		var leg *models.BetSelection
		for i := range bet.Selections {
			if bet.Selections[i].MatchID == result.MatchID {
				leg = &bet.Selections[i]
				break
			}
		}
		if leg == nil {
			return nil
		}

		if leg.Result == models.LegUnresolved {
			outcome := models.LegLost
			if leg.Pick == result.Category {
				outcome = models.LegWon
			}
			if _, err := e.bets.MarkLeg(tx, leg.ID, outcome); err != nil {
				return err
			}
			leg.Result = outcome
		}

		if leg.Result == models.LegLost {
			flipped, err := e.bets.SettleLost(tx, &bet)
			if err != nil {
				return err
			}
			if flipped {
				monitoring.BetsSettled.WithLabelValues("lost").Inc()
			}
			return nil
		}

		// Leg won: the slip pays only once every leg has reported in won.
		var open int64
		if err := tx.Model(&models.BetSelection{}).
			Where("bet_record_id = ? AND result <> ?", bet.ID, models.LegWon).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return nil
		}

		flipped, err := e.bets.SettleWon(tx, &bet)
		if err != nil {
			return err
		}
		if flipped {
			monitoring.BetsSettled.WithLabelValues("won").Inc()
			monitoring.PayoutPaise.Add(float64(bet.PotentialPayout))
		}
		return nil
	})
}
