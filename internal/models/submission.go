package models

import (
	"time"
)

// Submission statuses
const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusAccepted = "accepted"
	SubmissionStatusRefused  = "refused"
)

// Submission is a creator's claim that a TikTok video fulfills a campaign.
// A video may be submitted once, system-wide. Status only moves
// pending->accepted or pending->refused, both terminal.
type Submission struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CampaignID         uint           `gorm:"not null;index" json:"campaign_id"`
	Campaign           *Campaign      `gorm:"foreignKey:CampaignID" json:"campaign,omitempty"`
	TikTokAccountID    uint           `gorm:"column:tiktok_account_id;not null;index" json:"tiktok_account_id"`
	TikTokAccount      *TikTokAccount `gorm:"foreignKey:TikTokAccountID" json:"tiktok_account,omitempty"`
	VideoID            string         `gorm:"uniqueIndex;size:100;not null" json:"video_id"`
	Status             string         `gorm:"size:20;not null;default:pending;index" json:"status"`
	AdsCode            *string        `gorm:"size:100" json:"ads_code,omitempty"`
	RefuseReason       *string        `gorm:"size:500" json:"refuse_reason,omitempty"`
	VisibleInCommunity bool           `gorm:"default:false" json:"visible_in_community"`
	SubmittedAt        time.Time      `gorm:"autoCreateTime" json:"submitted_at"`
	ValidatedAt        *time.Time     `json:"validated_at,omitempty"`
}

// TableName specifies the table name for Submission model
func (Submission) TableName() string {
	return "submissions"
}

// VideoStats is the current stats snapshot for a submission: exactly one row
// per submission, created with zeros at submission time and overwritten on
// every refresh cycle.
type VideoStats struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"uniqueIndex;not null" json:"submission_id"`
	Views        int64     `gorm:"default:0" json:"views"`
	Likes        int64     `gorm:"default:0" json:"likes"`
	Comments     int64     `gorm:"default:0" json:"comments"`
	Shares       int64     `gorm:"default:0" json:"shares"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for VideoStats model
func (VideoStats) TableName() string {
	return "video_stats"
}

// VideoStatsHistory is the append-only log of superseded snapshots. Each row
// records the snapshot values at the moment they were overwritten.
type VideoStatsHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	Shares       int64     `json:"shares"`
	RecordedAt   time.Time `gorm:"autoCreateTime" json:"recorded_at"`
}

// TableName specifies the table name for VideoStatsHistory model
func (VideoStatsHistory) TableName() string {
	return "video_stats_history"
}
