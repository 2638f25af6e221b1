package services

import (
	"fmt"
	"time"

	"creator-market/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateVideo is returned when a video has already been submitted,
// system-wide
var ErrDuplicateVideo = fmt.Errorf("video already submitted")

// SubmissionService owns the submission lifecycle: creation, the terminal
// pending->accepted / pending->refused transitions, and deletion rules
type SubmissionService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewSubmissionService(db *gorm.DB, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		db:       db,
		notifier: notifier,
	}
}

// CreateSubmission registers a video against a published campaign. The video
// ID is unique across all submissions; a zeroed stats snapshot is created with
// the submission so the first refresh cycle has a baseline.
func (s *SubmissionService) CreateSubmission(campaignID, userID uint, accountID uint, videoID string) (*models.Submission, error) {
	var account models.TikTokAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("tiktok account %d not linked to user", accountID)
		}
		return nil, err
	}

	var campaign models.Campaign
	if err := s.db.Where("id = ?", campaignID).First(&campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if campaign.Status != models.CampaignStatusPublished {
		return nil, fmt.Errorf("campaign %d is not open for submissions", campaignID)
	}

	var existing models.Submission
	if err := s.db.Where("video_id = ?", videoID).First(&existing).Error; err == nil {
		return nil, ErrDuplicateVideo
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	submission := models.Submission{
		CampaignID:      campaignID,
		TikTokAccountID: accountID,
		VideoID:         videoID,
		Status:          models.SubmissionStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}

		snapshot := models.VideoStats{SubmissionID: submission.ID}
		if err := tx.Create(&snapshot).Error; err != nil {
			return fmt.Errorf("failed to create stats snapshot: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &submission, nil
}

// ValidateSubmission accepts a pending submission. Terminal: accepted
// submissions never go back to pending.
func (s *SubmissionService) ValidateSubmission(submissionID uint) error {
	var sub models.Submission
	if err := s.db.Preload("TikTokAccount").Where("id = ?", submissionID).First(&sub).Error; err != nil {
		return fmt.Errorf("failed to load submission: %w", err)
	}

	if sub.Status != models.SubmissionStatusPending {
		return fmt.Errorf("submission %d is not pending", submissionID)
	}

	now := time.Now()
	if err := s.db.Model(&sub).Updates(map[string]interface{}{
		"status":       models.SubmissionStatusAccepted,
		"validated_at": now,
	}).Error; err != nil {
		return fmt.Errorf("failed to validate submission: %w", err)
	}

	if sub.TikTokAccount != nil {
		s.notifier.Notify(models.NotificationSubmissionAccepted, sub.TikTokAccount.UserID, map[string]interface{}{
			"submission_id": sub.ID,
			"campaign_id":   sub.CampaignID,
		})
	}

	return nil
}

// RefuseSubmission refuses a pending submission with a reason. Terminal.
func (s *SubmissionService) RefuseSubmission(submissionID uint, reason string) error {
	if reason == "" {
		return fmt.Errorf("refuse reason is required")
	}

	var sub models.Submission
	if err := s.db.Preload("TikTokAccount").Where("id = ?", submissionID).First(&sub).Error; err != nil {
		return fmt.Errorf("failed to load submission: %w", err)
	}

	if sub.Status != models.SubmissionStatusPending {
		return fmt.Errorf("submission %d is not pending", submissionID)
	}

	if err := s.db.Model(&sub).Updates(map[string]interface{}{
		"status":        models.SubmissionStatusRefused,
		"refuse_reason": reason,
	}).Error; err != nil {
		return fmt.Errorf("failed to refuse submission: %w", err)
	}

	if sub.TikTokAccount != nil {
		s.notifier.Notify(models.NotificationSubmissionRefused, sub.TikTokAccount.UserID, map[string]interface{}{
			"submission_id": sub.ID,
			"campaign_id":   sub.CampaignID,
			"reason":        reason,
		})
	}

	return nil
}

// DeleteSubmission removes a submission. Creators may delete their own
// submissions only while pending; the campaign's brand owner may delete
// unconditionally. Snapshot and history rows go with it.
func (s *SubmissionService) DeleteSubmission(submissionID, requesterID uint, requesterRole string) error {
	var sub models.Submission
	if err := s.db.Preload("TikTokAccount").Preload("Campaign").
		Where("id = ?", submissionID).First(&sub).Error; err != nil {
		return fmt.Errorf("failed to load submission: %w", err)
	}

	switch requesterRole {
	case models.RoleBrand, models.RoleAdmin:
		if requesterRole == models.RoleBrand &&
			(sub.Campaign == nil || sub.Campaign.BrandID != requesterID) {
			return fmt.Errorf("submission %d does not belong to your campaign", submissionID)
		}
	default:
		if sub.TikTokAccount == nil || sub.TikTokAccount.UserID != requesterID {
			return fmt.Errorf("submission %d does not belong to you", submissionID)
		}
		if sub.Status != models.SubmissionStatusPending {
			return fmt.Errorf("only pending submissions can be deleted")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submissionID).Delete(&models.VideoStats{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", submissionID).Delete(&models.VideoStatsHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sub).Error
	})
}

// SetAdsCode attaches the ads authorization code to an accepted submission
func (s *SubmissionService) SetAdsCode(submissionID, userID uint, adsCode string) error {
	if adsCode == "" {
		return fmt.Errorf("ads code is required")
	}

	var sub models.Submission
	if err := s.db.Preload("TikTokAccount").Where("id = ?", submissionID).First(&sub).Error; err != nil {
		return fmt.Errorf("failed to load submission: %w", err)
	}

	if sub.TikTokAccount == nil || sub.TikTokAccount.UserID != userID {
		return fmt.Errorf("submission %d does not belong to you", submissionID)
	}

	if sub.Status != models.SubmissionStatusAccepted {
		return fmt.Errorf("ads code can only be set on accepted submissions")
	}

	return s.db.Model(&sub).Update("ads_code", adsCode).Error
}

// GetCampaignSubmissions lists a campaign's submissions, newest first
func (s *SubmissionService) GetCampaignSubmissions(campaignID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db.Where("campaign_id = ?", campaignID).
		Preload("TikTokAccount").Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// GetUserSubmissions lists a creator's submissions across campaigns
func (s *SubmissionService) GetUserSubmissions(userID uint) ([]models.Submission, error) {
	var accountIDs []uint
	if err := s.db.Model(&models.TikTokAccount{}).Where("user_id = ?", userID).
		Pluck("id", &accountIDs).Error; err != nil {
		return nil, err
	}
	if len(accountIDs) == 0 {
		return nil, nil
	}

	var submissions []models.Submission
	if err := s.db.Where("tiktok_account_id IN ?", accountIDs).
		Preload("Campaign").Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
