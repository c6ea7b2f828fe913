package models

import (
	"time"
)

// ReferralUser is a referral partner (property owner, B2B agent or
// public referrer) earning commission on attributed bookings.
type ReferralUser struct {
	ID           int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"type:varchar(120);not null" json:"name"`
	Email        *string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone        *string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	ReferralCode string  `gorm:"type:varchar(40);uniqueIndex;not null" json:"referral_code"`
	ReferralType string  `gorm:"type:varchar(20);not null" json:"referral_type"`
	Status       string  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Balance      float64 `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name.
func (ReferralUser) TableName() string {
	return "referral_users"
}

// Referral user statuses.
const (
	ReferralUserStatusActive   = "active"
	ReferralUserStatusInactive = "inactive"
)

// IsActive reports whether the referrer can earn commission.
func (u *ReferralUser) IsActive() bool {
	return u.Status == ReferralUserStatusActive
}

// ReferralTransaction is an immutable ledger entry recording a credited
// commission. Rows are only ever inserted, never updated.
type ReferralTransaction struct {
	ID             int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	ReferralUserID int64   `gorm:"index;not null" json:"referral_user_id"`
	BookingID      string  `gorm:"type:varchar(64);index;not null" json:"booking_id"`
	Amount         float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
	Type           string  `gorm:"type:varchar(20);not null" json:"type"`
	Status         string  `gorm:"type:varchar(20);not null" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	ReferralUser *ReferralUser `gorm:"foreignKey:ReferralUserID" json:"referral_user,omitempty"`
}

// TableName returns the table name.
func (ReferralTransaction) TableName() string {
	return "referral_transactions"
}

// Referral transaction types and statuses.
const (
	TransactionTypeEarning     = "earning"
	TransactionStatusCompleted = "completed"
)
