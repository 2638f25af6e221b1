package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"creator-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserService owns user registration, referral linkage and TikTok account
// records
type UserService struct {
	db                 *gorm.DB
	defaultReferralPct decimal.Decimal
}

func NewUserService(db *gorm.DB, defaultReferralPct decimal.Decimal) *UserService {
	return &UserService{
		db:                 db,
		defaultReferralPct: defaultReferralPct,
	}
}

// Register creates a user. When a referral code is given the new user is
// linked to its owner.
func (s *UserService) Register(email, name, role, referralCode string) (*models.User, error) {
	switch role {
	case models.RoleCreator, models.RoleBrand:
	default:
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("email already registered")
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	code, err := s.generateReferralCode()
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:              email,
		Name:               name,
		Role:               role,
		ReferralCode:       code,
		ReferralPercentage: s.defaultReferralPct,
	}

	if referralCode != "" {
		var referrer models.User
		if err := s.db.Where("referral_code = ?", referralCode).First(&referrer).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("invalid referral code")
			}
			return nil, err
		}
		user.ReferrerID = &referrer.ID
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetByEmail returns a user by email
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID returns a user by id
func (s *UserService) GetByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkTikTokAccount stores a creator's TikTok account with its token pair
func (s *UserService) LinkTikTokAccount(userID uint, username, openID, accessToken, refreshToken string, expiresAt time.Time) (*models.TikTokAccount, error) {
	var existing models.TikTokAccount
	if err := s.db.Where("open_id = ?", openID).First(&existing).Error; err == nil {
		if existing.UserID != userID {
			return nil, fmt.Errorf("tiktok account already linked to another user")
		}
		// Re-authentication replaces tokens and clears the invalid flag
		if err := s.db.Model(&existing).Updates(map[string]interface{}{
			"username":         username,
			"access_token":     accessToken,
			"refresh_token":    refreshToken,
			"token_expires_at": expiresAt,
			"invalid":          false,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to update tiktok account: %w", err)
		}
		return &existing, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	account := models.TikTokAccount{
		UserID:         userID,
		Username:       username,
		OpenID:         openID,
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
	}

	if err := s.db.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to link tiktok account: %w", err)
	}

	return &account, nil
}

// GetUserAccounts lists a user's linked TikTok accounts
func (s *UserService) GetUserAccounts(userID uint) ([]models.TikTokAccount, error) {
	var accounts []models.TikTokAccount
	if err := s.db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// generateReferralCode generates a random 8-character code
func (s *UserService) generateReferralCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:8], nil
}
