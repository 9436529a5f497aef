package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MatchUpcoming = "Upcoming"
	MatchLive     = "Live"
	MatchFinished = "Finished"
)

// Match is the simulated board entry. Settlement only ever consumes the
// terminal result; everything else on this row is presentation data.
type Match struct {
	gorm.Model

	MatchID   string    `gorm:"size:36;uniqueIndex" json:"match_id"`
	Sport     string    `gorm:"size:16;index" json:"sport"`
	League    string    `gorm:"size:64" json:"league"`
	HomeTeam  string    `gorm:"size:64" json:"home_team"`
	AwayTeam  string    `gorm:"size:64" json:"away_team"`
	StartTime time.Time `json:"start_time"`
	Status    string    `gorm:"size:16;index" json:"status"`

	Minute    int `json:"minute"`
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`

	OddsHome float64 `json:"odds_home"`
	OddsDraw float64 `json:"odds_draw,omitempty"` // 0 means the market is not offered
	OddsAway float64 `json:"odds_away"`
}

// MatchResult records a processed Finished event. The unique MatchID index is
// the settlement idempotency anchor.
type MatchResult struct {
	gorm.Model

	MatchID   string `gorm:"size:36;uniqueIndex" json:"match_id"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Category  string `gorm:"size:8" json:"category"`

	Payload datatypes.JSON `json:"-"`
}

// ResultCategory maps a final score to the pick it pays.
func ResultCategory(home, away int) string {
	switch {
	case home > away:
		return PickHome
	case home < away:
		return PickAway
	default:
		return PickDraw
	}
}
