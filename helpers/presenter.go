package helpers

import (
	"github.com/gofiber/fiber/v2"

	"nexusbet/models"
)

// Presenters convert internal paise amounts to rupee decimals for responses.

func Profile(u *models.User) fiber.Map {
	return fiber.Map{
		"username":      u.Username,
		"email":         u.Email,
		"balance":       ToRupees(u.Balance),
		"currency":      u.Currency,
		"role":          u.Role,
		"is_banned":     u.IsBanned,
		"kyc_status":    u.KycStatus,
		"notifications": u.Notifications,
	}
}

func Bet(b *models.BetRecord) fiber.Map {
	selections := make([]fiber.Map, 0, len(b.Selections))
	for i := range b.Selections {
		s := &b.Selections[i]
		selections = append(selections, fiber.Map{
			"match_id":   s.MatchID,
			"match_name": s.MatchName,
			"pick":       s.Pick,
			"team_name":  s.TeamName,
			"odds":       s.Odds,
			"result":     s.Result,
		})
	}
	return fiber.Map{
		"bet_id":           b.BetID,
		"stake":            ToRupees(b.Stake),
		"total_odds":       b.TotalOdds,
		"potential_payout": ToRupees(b.PotentialPayout),
		"status":           b.Status,
		"winnings":         ToRupees(b.Winnings),
		"placed_at":        b.CreatedAt,
		"settled_at":       b.SettledAt,
		"selections":       selections,
	}
}

func LedgerEntry(t *models.Transaction) fiber.Map {
	return fiber.Map{
		"tx_id":     t.TxID,
		"type":      t.Type,
		"amount":    ToRupees(t.Amount),
		"direction": t.Direction,
		"status":    t.Status,
		"method":    t.Method,
		"details":   t.Details,
		"ref_id":    t.RefID,
		"timestamp": t.CreatedAt,
	}
}

func Withdrawal(w *models.WithdrawalRequest) fiber.Map {
	return fiber.Map{
		"request_id":   w.RequestID,
		"username":     w.Username,
		"amount":       ToRupees(w.Amount),
		"upi_id":       w.UpiID,
		"status":       w.Status,
		"requested_at": w.CreatedAt,
	}
}

func Treasury(h *models.HouseStats) fiber.Map {
	return fiber.Map{
		"total_treasury": ToRupees(h.TotalTreasury),
		"total_volume":   ToRupees(h.TotalVolume),
		"total_profit":   ToRupees(h.TotalProfit),
		"updated_at":     h.UpdatedAt,
	}
}
