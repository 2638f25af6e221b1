package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralCommission statuses
const (
	CommissionStatusAvailable = "available"
	CommissionStatusWithdrawn = "withdrawn"
)

// ReferralCommission is a referrer's earned share of a paid campaign invoice.
// Created at most once per invoice; status moves available->withdrawn when
// consumed by a withdrawal request and never reverses.
type ReferralCommission struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReferrerID  uint            `gorm:"not null;index" json:"referrer_id"`
	Referrer    *User           `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	RefereeID   uint            `gorm:"not null" json:"referee_id"`
	Referee     *User           `gorm:"foreignKey:RefereeID" json:"referee,omitempty"`
	InvoiceID   uint            `gorm:"uniqueIndex;not null" json:"invoice_id"`
	AmountCents decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"amount_cents"`
	Status      string          `gorm:"size:20;not null;default:available;index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for ReferralCommission model
func (ReferralCommission) TableName() string {
	return "referral_commissions"
}

// ReferralInvoice is a withdrawal request by a referrer against their
// available commission balance.
type ReferralInvoice struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Reference   string          `gorm:"uniqueIndex;size:40;not null" json:"reference"`
	AmountCents decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"amount_cents"`
	Status      string          `gorm:"size:20;not null;default:uploaded;index" json:"status"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for ReferralInvoice model
func (ReferralInvoice) TableName() string {
	return "referral_invoices"
}
