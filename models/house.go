package models

import "time"

// InitialTreasury seeds the house reserve (in paise). It is a fixed float of
// liquidity, not real backing capital.
const InitialTreasury int64 = 100_000_000

// HouseStats is the singleton treasury snapshot. It is mutated only through
// atomic increments inside the bet-placement and settlement transactions.
type HouseStats struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	TotalTreasury int64     `json:"total_treasury"`
	TotalVolume   int64     `json:"total_volume"`
	TotalProfit   int64     `json:"total_profit"`
	UpdatedAt     time.Time `json:"updated_at"`
}
