package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is the bearer token handed out at login. Banning an account deletes
// its sessions, so a revoked user drops out on the next request.
type Session struct {
	gorm.Model

	SID       string    `gorm:"size:36;uniqueIndex;not null" json:"sid"`
	UserID    uint      `gorm:"index" json:"-"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// BeforeCreate mints the token id.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	s.SID = strings.ToLower(uuid.New().String())
	return nil
}
