package services

import (
	"fmt"

	"creator-market/internal/models"

	"gorm.io/gorm"
)

// RewardStatus is the derived standing of one creator against one reward
// tier: the creator's aggregate accepted views, whether the tier is unlocked,
// and the invoicing anchor when it is.
type RewardStatus struct {
	Tier               models.RewardTier `json:"tier"`
	TotalViews         int64             `json:"total_views"`
	IsUnlocked         bool              `json:"is_unlocked"`
	AnchorSubmissionID *uint             `json:"anchor_submission_id,omitempty"`
	Invoice            *models.Invoice   `json:"invoice,omitempty"`
}

type RewardService struct {
	db *gorm.DB
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{db: db}
}

// ComputeRewardStatus computes the creator's standing against every tier of a
// campaign. Unlocking is checked on the aggregate view count across all the
// creator's accepted submissions, not per video. Pure read, safe to call
// repeatedly.
func (s *RewardService) ComputeRewardStatus(campaignID, userID uint) ([]RewardStatus, error) {
	var tiers []models.RewardTier
	if err := s.db.Where("campaign_id = ?", campaignID).
		Order("views_target ASC").Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("failed to load reward tiers: %w", err)
	}

	var accountIDs []uint
	if err := s.db.Model(&models.TikTokAccount{}).Where("user_id = ?", userID).
		Pluck("id", &accountIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load creator accounts: %w", err)
	}

	// No linked accounts: every tier locked at zero views
	if len(accountIDs) == 0 {
		statuses := make([]RewardStatus, 0, len(tiers))
		for _, tier := range tiers {
			statuses = append(statuses, RewardStatus{Tier: tier})
		}
		return statuses, nil
	}

	var submissions []models.Submission
	if err := s.db.Where("campaign_id = ? AND tiktok_account_id IN ? AND status = ?",
		campaignID, accountIDs, models.SubmissionStatusAccepted).
		Order("id ASC").Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	var totalViews int64
	var anchorID *uint
	if len(submissions) > 0 {
		submissionIDs := make([]uint, 0, len(submissions))
		for _, sub := range submissions {
			submissionIDs = append(submissionIDs, sub.ID)
		}

		row := s.db.Model(&models.VideoStats{}).
			Where("submission_id IN ?", submissionIDs).
			Select("COALESCE(SUM(views), 0)").Row()
		if err := row.Scan(&totalViews); err != nil {
			return nil, fmt.Errorf("failed to sum views: %w", err)
		}

		// Anchor submission: lowest id, deterministic across calls
		anchorID = &submissions[0].ID
	}

	invoices, err := s.loadInvoicesByTier(tiers, submissions)
	if err != nil {
		return nil, err
	}

	statuses := make([]RewardStatus, 0, len(tiers))
	for _, tier := range tiers {
		status := RewardStatus{
			Tier:       tier,
			TotalViews: totalViews,
			IsUnlocked: totalViews >= tier.ViewsTarget,
		}

		if status.IsUnlocked {
			status.AnchorSubmissionID = anchorID
		}

		if invoice, ok := invoices[tier.ID]; ok {
			status.Invoice = invoice
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

// loadInvoicesByTier maps existing invoices for the creator's submissions to
// their reward tier
func (s *RewardService) loadInvoicesByTier(tiers []models.RewardTier, submissions []models.Submission) (map[uint]*models.Invoice, error) {
	result := make(map[uint]*models.Invoice)
	if len(tiers) == 0 || len(submissions) == 0 {
		return result, nil
	}

	tierIDs := make([]uint, 0, len(tiers))
	for _, tier := range tiers {
		tierIDs = append(tierIDs, tier.ID)
	}
	submissionIDs := make([]uint, 0, len(submissions))
	for _, sub := range submissions {
		submissionIDs = append(submissionIDs, sub.ID)
	}

	var invoices []models.Invoice
	if err := s.db.Where("reward_tier_id IN ? AND submission_id IN ?", tierIDs, submissionIDs).
		Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	for i := range invoices {
		result[invoices[i].RewardTierID] = &invoices[i]
	}

	return result, nil
}
