package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"creator-market/internal/models"
	"creator-market/internal/tiktok"

	"gorm.io/gorm"
)

// VideoPlatformClient is the external video platform contract consumed by the
// refresh cycle
type VideoPlatformClient interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (*tiktok.TokenData, error)
	GetVideoStats(ctx context.Context, accessToken string, videoIDs []string) ([]tiktok.VideoStatsData, error)
}

// CycleReport summarizes one refresh cycle. Per-account failures are counted
// here instead of aborting the cycle: the next run self-heals.
type CycleReport struct {
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Accounts        int       `json:"accounts"`
	UpdatedVideos   int       `json:"updated_videos"`
	SkippedVideos   int       `json:"skipped_videos"`
	SkippedAccounts int       `json:"skipped_accounts"`
	Failures        int       `json:"failures"`
}

// StatsRefreshService reconciles stored video stats with the external
// platform: one batched stats call per account, snapshot + history writes per
// submission, milestone notifications on tier crossings.
type StatsRefreshService struct {
	db       *gorm.DB
	client   VideoPlatformClient
	notifier Notifier
}

func NewStatsRefreshService(db *gorm.DB, client VideoPlatformClient, notifier Notifier) *StatsRefreshService {
	return &StatsRefreshService{
		db:       db,
		client:   client,
		notifier: notifier,
	}
}

// RunCycle refreshes stats for every accepted submission, grouped by TikTok
// account. Errors are contained per account and per video; the cycle never
// aborts early except on context cancellation.
func (s *StatsRefreshService) RunCycle(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{StartedAt: time.Now()}

	var submissions []models.Submission
	if err := s.db.Where("status = ?", models.SubmissionStatusAccepted).
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to load accepted submissions: %w", err)
	}

	// One batched stats call per account rather than per video
	groups := make(map[uint][]models.Submission)
	for _, sub := range submissions {
		groups[sub.TikTokAccountID] = append(groups[sub.TikTokAccountID], sub)
	}

	accountIDs := make([]uint, 0, len(groups))
	for id := range groups {
		accountIDs = append(accountIDs, id)
	}
	sort.Slice(accountIDs, func(i, j int) bool { return accountIDs[i] < accountIDs[j] })

	report.Accounts = len(accountIDs)

	for _, accountID := range accountIDs {
		select {
		case <-ctx.Done():
			report.FinishedAt = time.Now()
			return report, ctx.Err()
		default:
		}

		if err := s.refreshAccountGroup(ctx, accountID, groups[accountID], report); err != nil {
			report.Failures++
			log.Printf("Stats refresh: account %d failed: %v", accountID, err)
		}
	}

	report.FinishedAt = time.Now()
	log.Printf("Stats refresh cycle done: %d accounts, %d videos updated, %d skipped, %d failures",
		report.Accounts, report.UpdatedVideos, report.SkippedVideos, report.Failures)
	return report, nil
}

func (s *StatsRefreshService) refreshAccountGroup(ctx context.Context, accountID uint, group []models.Submission, report *CycleReport) error {
	var account models.TikTokAccount
	if err := s.db.Where("id = ?", accountID).First(&account).Error; err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if account.Invalid {
		report.SkippedAccounts++
		log.Printf("Stats refresh: account %d marked invalid, skipping %d submissions", accountID, len(group))
		return nil
	}

	if tiktok.IsTokenExpired(account.TokenExpiresAt) {
		if err := s.refreshAccountToken(ctx, &account); err != nil {
			// Terminal for this account until the user re-authenticates
			s.markAccountInvalid(accountID)
			report.SkippedAccounts++
			return fmt.Errorf("token refresh failed, account marked invalid: %w", err)
		}
	}

	videoIDs := make([]string, 0, len(group))
	for _, sub := range group {
		videoIDs = append(videoIDs, sub.VideoID)
	}

	stats, err := s.client.GetVideoStats(ctx, account.AccessToken, videoIDs)
	if err != nil {
		return fmt.Errorf("failed to fetch video stats: %w", err)
	}

	statsByVideo := make(map[string]tiktok.VideoStatsData, len(stats))
	for _, st := range stats {
		statsByVideo[st.ID] = st
	}

	for _, sub := range group {
		st, ok := statsByVideo[sub.VideoID]
		if !ok {
			// Not returned by the platform: skip, never error the batch
			report.SkippedVideos++
			log.Printf("Stats refresh: video %s not returned for submission %d, skipping", sub.VideoID, sub.ID)
			continue
		}

		if err := s.applyVideoStats(sub, st); err != nil {
			report.Failures++
			log.Printf("Stats refresh: submission %d update failed: %v", sub.ID, err)
			continue
		}
		report.UpdatedVideos++
	}

	return nil
}

// refreshAccountToken exchanges and persists a new token pair before any
// stats call, so a crash mid-cycle cannot lose the refreshed token. The
// token_version guard prevents a concurrent cycle's refresh from being
// overwritten.
func (s *StatsRefreshService) refreshAccountToken(ctx context.Context, account *models.TikTokAccount) error {
	token, err := s.client.RefreshAccessToken(ctx, account.RefreshToken)
	if err != nil {
		return err
	}

	result := s.db.Model(&models.TikTokAccount{}).
		Where("id = ? AND token_version = ?", account.ID, account.TokenVersion).
		Updates(map[string]interface{}{
			"access_token":     token.AccessToken,
			"refresh_token":    token.RefreshToken,
			"token_expires_at": token.ExpiresAt(),
			"token_version":    account.TokenVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Another cycle refreshed concurrently; use its stored token
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return fmt.Errorf("failed to reload account after concurrent refresh: %w", err)
		}
		return nil
	}

	account.AccessToken = token.AccessToken
	account.RefreshToken = token.RefreshToken
	account.TokenExpiresAt = token.ExpiresAt()
	account.TokenVersion++
	return nil
}

func (s *StatsRefreshService) markAccountInvalid(accountID uint) {
	if err := s.db.Model(&models.TikTokAccount{}).Where("id = ?", accountID).
		Update("invalid", true).Error; err != nil {
		log.Printf("Stats refresh: failed to mark account %d invalid: %v", accountID, err)
	}
}

// applyVideoStats evaluates milestone crossings against the previous snapshot,
// appends the superseded snapshot to history, then overwrites the snapshot.
func (s *StatsRefreshService) applyVideoStats(sub models.Submission, st tiktok.VideoStatsData) error {
	var current models.VideoStats
	err := s.db.Where("submission_id = ?", sub.ID).First(&current).Error
	exists := err == nil
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	oldViews := int64(0)
	if exists {
		oldViews = current.Views
	}

	// Crossings are checked on the old->new delta before the overwrite
	s.checkMilestones(sub.ID, oldViews, st.Views)

	if exists {
		history := models.VideoStatsHistory{
			SubmissionID: sub.ID,
			Views:        current.Views,
			Likes:        current.Likes,
			Comments:     current.Comments,
			Shares:       current.Shares,
		}
		if err := s.db.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to append stats history: %w", err)
		}

		if err := s.db.Model(&current).Updates(map[string]interface{}{
			"views":      st.Views,
			"likes":      st.Likes,
			"comments":   st.Comments,
			"shares":     st.Shares,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update snapshot: %w", err)
		}
		return nil
	}

	snapshot := models.VideoStats{
		SubmissionID: sub.ID,
		Views:        st.Views,
		Likes:        st.Likes,
		Comments:     st.Comments,
		Shares:       st.Shares,
	}
	if err := s.db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

// checkMilestones fires one notification per tier strictly crossed by the
// oldViews->newViews delta, in ascending tier order. Re-running the same delta
// on an already-unlocked tier does not re-fire.
func (s *StatsRefreshService) checkMilestones(submissionID uint, oldViews, newViews int64) {
	var sub models.Submission
	if err := s.db.Preload("TikTokAccount").Where("id = ?", submissionID).First(&sub).Error; err != nil {
		log.Printf("Milestone check: failed to load submission %d: %v", submissionID, err)
		return
	}

	// Guards against a concurrent refuse racing the refresh
	if sub.Status != models.SubmissionStatusAccepted {
		return
	}

	if sub.TikTokAccount == nil {
		log.Printf("Milestone check: submission %d has no account loaded", submissionID)
		return
	}

	var tiers []models.RewardTier
	if err := s.db.Where("campaign_id = ?", sub.CampaignID).
		Order("views_target ASC").Find(&tiers).Error; err != nil {
		log.Printf("Milestone check: failed to load tiers for campaign %d: %v", sub.CampaignID, err)
		return
	}

	for _, tier := range tiers {
		if oldViews < tier.ViewsTarget && tier.ViewsTarget <= newViews {
			s.notifier.Notify(models.NotificationMilestoneReached, sub.TikTokAccount.UserID, map[string]interface{}{
				"campaign_id":   sub.CampaignID,
				"submission_id": sub.ID,
				"views_target":  tier.ViewsTarget,
				"amount_cents":  tier.AmountCents,
			})
		}
	}
}
