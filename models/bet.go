package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BetPending = "Pending"
	BetWon     = "Won"
	BetLost    = "Lost"
)

const (
	PickHome = "home"
	PickDraw = "draw"
	PickAway = "away"
)

const (
	LegUnresolved = ""
	LegWon        = "won"
	LegLost       = "lost"
)

// BetRecord is an accumulator slip: it pays out only if every selection wins.
type BetRecord struct {
	gorm.Model

	BetID    string `gorm:"size:36;uniqueIndex" json:"bet_id"`
	Username string `gorm:"index;size:32" json:"username"`

	Stake           int64   `json:"stake"`
	TotalOdds       float64 `json:"total_odds"`
	PotentialPayout int64   `json:"potential_payout"`

	Status    string     `gorm:"size:16;index" json:"status"`
	Winnings  int64      `json:"winnings"`
	SettledAt *time.Time `json:"settled_at,omitempty"`

	Selections []BetSelection `gorm:"foreignKey:BetRecordID;constraint:OnDelete:CASCADE" json:"selections"`
}

// BetSelection snapshots the odds at placement time; market movement after
// placement never changes a slip's terms.
type BetSelection struct {
	gorm.Model

	BetRecordID uint   `gorm:"index" json:"-"`
	MatchID     string `gorm:"size:36;index" json:"match_id"`
	MatchName   string `gorm:"size:128" json:"match_name"`
	Pick        string `gorm:"size:8" json:"pick"`
	TeamName    string `gorm:"size:64" json:"team_name"`
	Odds        float64 `json:"odds"`

	// Result is per-leg resolution state: "", "won" or "lost". A slip is Won
	// only once every leg is "won"; the first "lost" leg voids it.
	Result string `gorm:"size:8;default:''" json:"result"`
}
