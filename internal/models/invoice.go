package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses (shared with ReferralInvoice)
const (
	InvoiceStatusUploaded = "uploaded"
	InvoiceStatusPaid     = "paid"
)

// Invoice is a creator's payable claim against an unlocked reward tier. It is
// anchored to the creator's earliest accepted submission in the campaign and
// transitions uploaded->paid only.
type Invoice struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	SubmissionID uint            `gorm:"not null;index" json:"submission_id"`
	Submission   *Submission     `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	RewardTierID uint            `gorm:"not null;index" json:"reward_tier_id"`
	RewardTier   *RewardTier     `gorm:"foreignKey:RewardTierID" json:"reward_tier,omitempty"`
	AmountCents  decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"amount_cents"`
	Status       string          `gorm:"size:20;not null;default:uploaded;index" json:"status"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName specifies the table name for Invoice model
func (Invoice) TableName() string {
	return "invoices"
}
