package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStandard = "standard"
	RoleAdmin    = "admin"
)

const (
	KycUnverified = "Unverified"
	KycPending    = "Pending"
	KycVerified   = "Verified"
	KycRejected   = "Rejected"
)

type User struct {
	gorm.Model

	Username     string `gorm:"uniqueIndex;size:32" json:"username"`
	PasswordHash string `gorm:"size:64" json:"-"`
	Email        string `gorm:"size:128" json:"email"`

	// Balance is held in paise. Conversion to rupees happens only at the
	// HTTP boundary.
	Balance  int64  `json:"balance"`
	Currency string `gorm:"size:8;default:INR" json:"currency"`

	Role      string `gorm:"size:16;default:standard;index" json:"role"`
	IsBanned  bool   `gorm:"default:false" json:"is_banned"`
	KycStatus string `gorm:"size:16;default:Unverified" json:"kyc_status"`

	KycDetails    datatypes.JSON `json:"kyc_details,omitempty"`
	Notifications datatypes.JSON `json:"notifications,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type KycDetails struct {
	FullName string `json:"full_name"`
	IDNumber string `json:"id_number"`
	IDType   string `json:"id_type"`
}

// NotificationPrefs are the account's opt-in toggles, stored as JSON on the
// user row.
type NotificationPrefs struct {
	BetSettled  bool `json:"bet_settled"`
	Withdrawals bool `json:"withdrawals"`
	Promotions  bool `json:"promotions"`
}
