package services

import (
	"fmt"

	"creator-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignService owns campaign and reward tier CRUD for brands
type CampaignService struct {
	db *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{db: db}
}

// CreateCampaign creates a draft campaign for a brand
func (s *CampaignService) CreateCampaign(brandID uint, title, description string, budgetCents decimal.Decimal) (*models.Campaign, error) {
	if title == "" {
		return nil, fmt.Errorf("campaign title is required")
	}

	campaign := models.Campaign{
		BrandID:     brandID,
		Title:       title,
		Description: description,
		Status:      models.CampaignStatusDraft,
		BudgetCents: budgetCents,
	}

	if err := s.db.Create(&campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	return &campaign, nil
}

// GetCampaign returns a campaign with its reward tiers sorted ascending
func (s *CampaignService) GetCampaign(campaignID uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.Preload("Rewards", func(db *gorm.DB) *gorm.DB {
		return db.Order("views_target ASC")
	}).Where("id = ?", campaignID).First(&campaign).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ListPublishedCampaigns lists campaigns open to creators
func (s *CampaignService) ListPublishedCampaigns() ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := s.db.Where("status = ?", models.CampaignStatusPublished).
		Preload("Rewards").Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ListBrandCampaigns lists all campaigns of one brand
func (s *CampaignService) ListBrandCampaigns(brandID uint) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := s.db.Where("brand_id = ?", brandID).
		Preload("Rewards").Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// UpdateCampaignStatus moves a campaign between draft, published and closed
func (s *CampaignService) UpdateCampaignStatus(campaignID, brandID uint, status string) error {
	switch status {
	case models.CampaignStatusDraft, models.CampaignStatusPublished, models.CampaignStatusClosed:
	default:
		return fmt.Errorf("invalid campaign status: %s", status)
	}

	result := s.db.Model(&models.Campaign{}).
		Where("id = ? AND brand_id = ?", campaignID, brandID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("campaign %d not found for brand %d", campaignID, brandID)
	}
	return nil
}

// AddRewardTier attaches a reward tier to a brand's campaign
func (s *CampaignService) AddRewardTier(campaignID, brandID uint, viewsTarget int64, amountCents decimal.Decimal, allowMultiple bool) (*models.RewardTier, error) {
	if viewsTarget <= 0 {
		return nil, fmt.Errorf("views target must be positive")
	}
	if !amountCents.IsPositive() {
		return nil, fmt.Errorf("reward amount must be positive")
	}

	var campaign models.Campaign
	if err := s.db.Where("id = ? AND brand_id = ?", campaignID, brandID).First(&campaign).Error; err != nil {
		return nil, fmt.Errorf("campaign %d not found for brand %d", campaignID, brandID)
	}

	tier := models.RewardTier{
		CampaignID:          campaignID,
		ViewsTarget:         viewsTarget,
		AmountCents:         amountCents,
		AllowMultipleVideos: allowMultiple,
	}

	if err := s.db.Create(&tier).Error; err != nil {
		return nil, fmt.Errorf("failed to create reward tier: %w", err)
	}

	return &tier, nil
}

// DeleteRewardTier removes a tier that is not yet invoiced
func (s *CampaignService) DeleteRewardTier(tierID, brandID uint) error {
	var tier models.RewardTier
	if err := s.db.Where("id = ?", tierID).First(&tier).Error; err != nil {
		return fmt.Errorf("failed to load reward tier: %w", err)
	}

	var campaign models.Campaign
	if err := s.db.Where("id = ? AND brand_id = ?", tier.CampaignID, brandID).First(&campaign).Error; err != nil {
		return fmt.Errorf("reward tier %d does not belong to your campaign", tierID)
	}

	var invoiced int64
	if err := s.db.Model(&models.Invoice{}).Where("reward_tier_id = ?", tierID).Count(&invoiced).Error; err != nil {
		return err
	}
	if invoiced > 0 {
		return fmt.Errorf("reward tier %d is already invoiced", tierID)
	}

	return s.db.Delete(&tier).Error
}
