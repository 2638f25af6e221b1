package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleCreator = "creator"
	RoleBrand   = "brand"
	RoleAdmin   = "admin"
)

// User represents a user in the system (creator, brand member or admin)
type User struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Email              string          `gorm:"uniqueIndex;not null" json:"email"`
	Name               string          `gorm:"not null" json:"name"`
	Role               string          `gorm:"size:20;not null;default:creator" json:"role"`
	ReferralCode       string          `gorm:"uniqueIndex;size:20" json:"referral_code"`
	ReferrerID         *uint           `gorm:"index" json:"referrer_id,omitempty"`
	Referrer           *User           `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	ReferralPercentage decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"referral_percentage"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// TikTokAccount represents a creator's linked TikTok account.
// Access tokens are refreshed by the stats scheduler; TokenVersion guards
// against two concurrent cycles persisting a refresh over each other.
type TikTokAccount struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	User           *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Username       string    `gorm:"size:100;not null" json:"username"`
	OpenID         string    `gorm:"uniqueIndex;size:100;not null" json:"open_id"`
	AccessToken    string    `gorm:"size:500" json:"-"`
	RefreshToken   string    `gorm:"size:500" json:"-"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	TokenVersion   int       `gorm:"default:0" json:"-"`
	Invalid        bool      `gorm:"default:false" json:"invalid"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for TikTokAccount model
func (TikTokAccount) TableName() string {
	return "tiktok_accounts"
}
