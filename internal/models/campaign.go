package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusPublished = "published"
	CampaignStatusClosed    = "closed"
)

// Campaign represents a paid campaign published by a brand
type Campaign struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	BrandID     uint            `gorm:"not null;index" json:"brand_id"`
	Brand       *User           `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Status      string          `gorm:"size:20;not null;default:draft;index" json:"status"`
	BudgetCents decimal.Decimal `gorm:"type:decimal(18,0);default:0" json:"budget_cents"`
	Rewards     []RewardTier    `gorm:"foreignKey:CampaignID" json:"rewards,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// RewardTier is a (view-count threshold, payout amount) pair attached to a
// campaign. Tiers are stored unordered and evaluated ascending by views target.
type RewardTier struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CampaignID          uint            `gorm:"not null;index" json:"campaign_id"`
	ViewsTarget         int64           `gorm:"not null" json:"views_target"`
	AmountCents         decimal.Decimal `gorm:"type:decimal(18,0);not null" json:"amount_cents"`
	AllowMultipleVideos bool            `gorm:"default:false" json:"allow_multiple_videos"`
	CreatedAt           time.Time       `json:"created_at"`
}

// TableName specifies the table name for RewardTier model
func (RewardTier) TableName() string {
	return "reward_tiers"
}
